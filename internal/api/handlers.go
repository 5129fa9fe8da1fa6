package api

import (
	"net/http"
	"strings"

	"mobility-portal/internal/common/auth"
	"mobility-portal/internal/common/database"
	apperrors "mobility-portal/internal/common/errors"
	"mobility-portal/internal/common/metrics"
	"mobility-portal/internal/mobility/form"
	"mobility-portal/internal/mobility/policy"
	"mobility-portal/internal/mobility/statistics"
	"mobility-portal/internal/models"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	failed := database.CheckAll(r.Context(), s.deps.ReadyTimeout, s.deps.Checks)
	if len(failed) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	checks := make(map[string]string, len(failed))
	for name, err := range failed {
		checks[name] = err.Error()
	}
	s.logger.Warn("readiness check failed", map[string]interface{}{"failed": checks})
	writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
		"status": "not ready",
		"checks": checks,
	})
}

func (s *Server) listSchools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schools":       policy.Entries(),
		"nationalities": models.Nationalities(),
		"slots":         form.Slots(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req, "invalid request body"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		s.writeError(w, r, apperrors.NewInvalidRequestError("email and password are required"))
		return
	}

	session, err := s.deps.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Auth.Logout(r.Context(), auth.SessionFrom(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	profile, err := s.deps.Auth.Me(r.Context(), auth.SessionFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// initialForm returns the blank form of the caller with the full error map.
func (s *Server) initialForm(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"form":   form.New(session.User.Email),
		"errors": form.InitialErrors(),
	})
}

// validateForm evaluates a form without submitting it. File entries only
// need a name and a size.
func (s *Server) validateForm(w http.ResponseWriter, r *http.Request) {
	var f models.ApplicationForm
	if err := readJSON(w, r, &f, "invalid form JSON"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := parseSchools(&f); err != nil {
		s.writeError(w, r, err)
		return
	}

	result := s.deps.Validator.Evaluate(&f)
	metrics.ObserveValidation("api", result.Submittable)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) mySubmission(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFrom(r.Context())
	rec, err := s.deps.Store.GetMySubmission(r.Context(), session.User.Email)
	if err != nil {
		s.writeError(w, r, apperrors.NewDatabaseFailedError("get submission", err))
		return
	}
	if rec == nil {
		s.writeError(w, r, apperrors.NewNotFoundError("no submission yet"))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) listSubmissions(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Store.ListAllSubmissions(r.Context())
	if err != nil {
		s.writeError(w, r, apperrors.NewDatabaseFailedError("list submissions", err))
		return
	}
	if records == nil {
		records = []models.SubmissionMetaDb{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": records,
		"total":       len(records),
	})
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Store.ListAllSubmissions(r.Context())
	if err != nil {
		s.writeError(w, r, apperrors.NewDatabaseFailedError("list submissions", err))
		return
	}
	writeJSON(w, http.StatusOK, statistics.Aggregate(records))
}

// parseSchools rejects school ids outside the registry and turns an empty
// id into the unset sentinel.
func parseSchools(f *models.ApplicationForm) error {
	for _, c := range []*models.SchoolChoice{&f.Choice1, &f.Choice2} {
		school, err := policy.Parse(string(c.SchoolName))
		if err != nil {
			return err
		}
		c.SchoolName = school
	}
	return nil
}

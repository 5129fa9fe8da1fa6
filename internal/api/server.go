// Package api serves the applicant and staff HTTP endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mobility-portal/internal/common/auth"
	"mobility-portal/internal/common/database"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/common/metrics"
	"mobility-portal/internal/mobility/validation"
	"mobility-portal/internal/models"
	"mobility-portal/internal/store"
)

// Submitter runs a submission for an authenticated applicant.
// *submission.Builder implements it.
type Submitter interface {
	Submit(ctx context.Context, email string, f *models.ApplicationForm) (*models.SubmissionMetaDb, error)
}

// ProcessStarter is notified after a submission is saved.
type ProcessStarter interface {
	SubmissionSaved(ctx context.Context, rec *models.SubmissionMetaDb) (int64, error)
}

// UploadObserver records the size of accepted uploads.
type UploadObserver interface {
	RecordUploadBytes(ctx context.Context, slot models.Slot, n int64)
}

// Deps are the collaborators of the HTTP layer. Process, Uploads and
// Checks are optional.
type Deps struct {
	Auth      auth.Provider
	Validator *validation.Validator
	Submitter Submitter
	Store     store.SubmissionStore
	Process   ProcessStarter
	Uploads   UploadObserver
	Checks    map[string]database.Check
	Logger    logger.Logger

	MaxUploadBytes int64
	ReadyTimeout   time.Duration
}

type Server struct {
	deps   Deps
	logger logger.Logger
}

func NewServer(deps Deps) *Server {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 10 << 20
	}
	if deps.ReadyTimeout <= 0 {
		deps.ReadyTimeout = 3 * time.Second
	}
	return &Server{
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recovery)
	r.Use(s.accessLog)

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/schools", s.listSchools)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Post("/auth/logout", s.logout)
			r.Get("/me", s.me)
			r.Get("/form/initial", s.initialForm)
			r.Post("/submissions/validate", s.validateForm)
			r.Get("/submissions/me", s.mySubmission)

			r.With(s.requireVerifiedEmail).Post("/submissions", s.createSubmission)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/submissions", s.listSubmissions)
				r.Get("/submissions/statistics", s.statistics)
			})
		})
	})

	return r
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "mobility-portal/internal/common/errors"
	"mobility-portal/internal/mobility/policy"
	"mobility-portal/internal/mobility/submission"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// maxJSONBytes caps the JSON request bodies.
const maxJSONBytes = 1 << 20

// readJSON decodes at most maxJSONBytes of the body into v. Failures are
// INVALID_REQUEST errors carrying invalidMsg, or "request body too large".
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}, invalidMsg string) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.NewInvalidRequestError("request body too large")
		}
		return apperrors.NewInvalidRequestError(invalidMsg)
	}
	return nil
}

// toStandardError maps domain errors onto API errors. Upload and persist
// failures both surface as "submission failed".
func toStandardError(err error) *apperrors.StandardError {
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}

	var validationErr *submission.ValidationError
	if errors.As(err, &validationErr) {
		return apperrors.NewValidationFailedError(validationErr.Errors)
	}

	var unknown *policy.UnknownSchoolError
	if errors.As(err, &unknown) {
		return apperrors.NewUnknownSchoolError(err)
	}

	if errors.Is(err, submission.ErrUploadFailure) || errors.Is(err, submission.ErrPersistFailure) {
		return apperrors.NewSubmissionFailedError(err)
	}
	return apperrors.NewInternalError(err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := toStandardError(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"path":   r.URL.Path,
		"code":   string(stdErr.Code),
		"status": status,
	}
	if status >= http.StatusInternalServerError {
		fields["error"] = err.Error()
		s.logger.Error("request failed", fields)
	} else {
		s.logger.Debug("request rejected", fields)
	}

	// Collaborator details stay in the logs.
	body := *stdErr
	if status >= http.StatusInternalServerError {
		body.Details = ""
	}
	writeJSON(w, status, body)
}

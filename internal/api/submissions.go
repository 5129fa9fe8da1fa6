package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"mobility-portal/internal/common/auth"
	apperrors "mobility-portal/internal/common/errors"
	"mobility-portal/internal/mobility/form"
	"mobility-portal/internal/models"
)

// formPart is the multipart field holding the JSON form. Every other file
// field is named after its slot.
const formPart = "form"

// multipartMemory is what ParseMultipartForm keeps in memory; larger parts
// spill to temporary files.
const multipartMemory = 32 << 20

func (s *Server) createSubmission(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFrom(r.Context())

	// Every slot at the size limit plus room for the form itself.
	limit := s.deps.MaxUploadBytes*int64(len(form.Slots())) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	f, err := s.parseSubmission(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.deps.Submitter.Submit(r.Context(), session.User.Email, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.startProcess(r.Context(), rec)
	writeJSON(w, http.StatusCreated, rec)
}

// parseSubmission reads the form part and attaches the uploaded files.
// File entries of the JSON form are ignored; only multipart files count.
func (s *Server) parseSubmission(r *http.Request) (*models.ApplicationForm, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewInvalidRequestError("request body too large")
		}
		return nil, apperrors.NewInvalidRequestError("expected a multipart form: " + err.Error())
	}

	raw := r.FormValue(formPart)
	if raw == "" {
		return nil, apperrors.NewInvalidRequestError("missing form part")
	}
	var f models.ApplicationForm
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, apperrors.NewInvalidRequestError("invalid form JSON")
	}
	if err := parseSchools(&f); err != nil {
		return nil, err
	}
	f.Files = map[models.Slot]*models.File{}

	for name, headers := range r.MultipartForm.File {
		spec, ok := form.LookupSlot(name)
		if !ok {
			return nil, apperrors.NewFileRejectedError(name, "unknown file slot")
		}
		if len(headers) != 1 {
			return nil, apperrors.NewFileRejectedError(name, "exactly one file per slot")
		}
		file, err := s.readFile(r.Context(), spec, headers[0])
		if err != nil {
			return nil, err
		}
		f.Attach(spec.Slot, file)
	}
	return &f, nil
}

func (s *Server) readFile(ctx context.Context, spec form.SlotSpec, fh *multipart.FileHeader) (*models.File, error) {
	slot := string(spec.Slot)
	if !spec.AcceptsFile(fh.Filename) {
		return nil, apperrors.NewFileRejectedError(slot, fmt.Sprintf("expected a .%s file", spec.Extension))
	}
	if fh.Size > s.deps.MaxUploadBytes {
		return nil, apperrors.NewFileRejectedError(slot, fmt.Sprintf("file exceeds %d bytes", s.deps.MaxUploadBytes))
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewInvalidRequestError("cannot read " + slot)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, apperrors.NewInvalidRequestError("cannot read " + slot)
	}
	if s.deps.Uploads != nil {
		s.deps.Uploads.RecordUploadBytes(ctx, spec.Slot, int64(len(data)))
	}

	return &models.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// startProcess notifies the workflow engine without holding the response.
// Failures are only logged; the submission is already stored.
func (s *Server) startProcess(ctx context.Context, rec *models.SubmissionMetaDb) {
	if s.deps.Process == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if _, err := s.deps.Process.SubmissionSaved(ctx, rec); err != nil {
			s.logger.Warn("submission process not started", map[string]interface{}{
				"databaseId": rec.DatabaseID,
				"error":      err,
			})
		}
	}()
}

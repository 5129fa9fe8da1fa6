// Package submission turns a validated application form into a stored
// submission: it uploads every attached document and saves the record.
package submission

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/mobility/form"
	"mobility-portal/internal/mobility/validation"
	"mobility-portal/internal/models"
)

// Uploader stores one document and returns its URL. Uploading the same slot
// twice for a submission id must overwrite.
type Uploader interface {
	UploadSingleFile(ctx context.Context, email string, slot models.Slot, submissionID string, file *models.File) (string, error)
}

// Saver persists a submission record and assigns its database id.
type Saver interface {
	SaveSubmission(ctx context.Context, data models.SubmissionData) (*models.SubmissionMetaDb, error)
}

// Recorder receives submission metrics.
type Recorder interface {
	RecordUpload(slot models.Slot, err error, d time.Duration)
	RecordSubmission(outcome string, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordUpload(models.Slot, error, time.Duration) {}
func (noopRecorder) RecordSubmission(string, time.Duration)         {}

// Builder runs submissions. It keeps no per-submission state, so one
// Builder serves concurrent requests.
type Builder struct {
	validator   *validation.Validator
	uploader    Uploader
	saver       Saver
	logger      logger.Logger
	recorder    Recorder
	now         func() time.Time
	newID       func() (string, error)
	concurrency int
}

type Option func(*Builder)

func WithRecorder(r Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func WithIDGenerator(gen func() (string, error)) Option {
	return func(b *Builder) { b.newID = gen }
}

// WithUploadConcurrency bounds parallel uploads per submission; n <= 0
// means unbounded.
func WithUploadConcurrency(n int) Option {
	return func(b *Builder) { b.concurrency = n }
}

func NewBuilder(v *validation.Validator, uploader Uploader, saver Saver, log logger.Logger, opts ...Option) *Builder {
	b := &Builder{
		validator:   v,
		uploader:    uploader,
		saver:       saver,
		logger:      log.WithFields(map[string]interface{}{"component": "submission-builder"}),
		recorder:    noopRecorder{},
		now:         time.Now,
		newID:       timeOrderedID,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// timeOrderedID returns a UUIDv7, which embeds a millisecond timestamp.
func timeOrderedID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Normalize returns the form as it will be submitted by email: the
// authenticated email replaces the typed one, an unset second choice loses
// its sub-fields and letter, Moroccan applicants drop the residence
// permit, and unknown slots or files without content are removed. A file
// described only by name and size cannot be uploaded, so it counts as
// missing here. f is not modified.
func Normalize(email string, f *models.ApplicationForm) *models.ApplicationForm {
	out := f.Clone()
	out.Email = strings.TrimSpace(email)
	out.FirstName = strings.TrimSpace(out.FirstName)
	out.LastName = strings.TrimSpace(out.LastName)

	if !out.Choice1.SchoolName.IsSet() {
		out.Choice1 = models.UnsetChoice()
	}
	if !out.Choice2.SchoolName.IsSet() {
		out.Choice2 = models.UnsetChoice()
		delete(out.Files, models.SlotMotivationLetterChoice2)
	}
	if out.Nationality == models.NationalityMoroccan {
		delete(out.Files, models.SlotResidencePermit)
	}

	for slot, file := range out.Files {
		if _, ok := form.LookupSlot(string(slot)); !ok || file == nil || len(file.Data) == 0 {
			delete(out.Files, slot)
		}
	}
	return out
}

type upload struct {
	slot models.Slot
	file *models.File
	url  string
}

// uploadPlan lists the attached slots in display order.
func uploadPlan(f *models.ApplicationForm) []*upload {
	var plan []*upload
	for _, s := range form.Slots() {
		if file := f.File(s.Slot); file.Present() {
			plan = append(plan, &upload{slot: s.Slot, file: file})
		}
	}
	return plan
}

// Submit validates, uploads and saves the application of email. It does
// not retry and does not delete files uploaded before a failure.
func (b *Builder) Submit(ctx context.Context, email string, f *models.ApplicationForm) (*models.SubmissionMetaDb, error) {
	start := b.now()
	normalized := Normalize(email, f)

	errs := b.validator.ValidateAll(normalized)
	if !validation.IsSubmittable(normalized, errs) {
		b.recorder.RecordSubmission("invalid", b.now().Sub(start))
		b.logger.Info("submission rejected by validation", map[string]interface{}{
			"email": normalized.Email,
		})
		return nil, &SubmissionError{Stage: StageValidate, Err: &ValidationError{Errors: errs}}
	}

	submissionID, err := b.newID()
	if err != nil {
		return nil, &SubmissionError{Stage: StageUpload, Err: err}
	}
	log := b.logger.WithFields(map[string]interface{}{
		"submissionId": submissionID,
		"email":        normalized.Email,
	})

	plan := uploadPlan(normalized)
	log.Info("uploading documents", map[string]interface{}{"files": len(plan)})

	if err := b.uploadAll(ctx, normalized.Email, submissionID, plan); err != nil {
		b.recorder.RecordSubmission("upload_failed", b.now().Sub(start))
		log.Warn("submission aborted, uploaded files are orphaned", map[string]interface{}{"error": err})
		return nil, err
	}

	data := assemble(normalized, plan, b.now())

	saved, err := b.saver.SaveSubmission(ctx, data)
	if err == nil && saved == nil {
		err = errors.New("store returned no record")
	}
	if err != nil {
		b.recorder.RecordSubmission("persist_failed", b.now().Sub(start))
		log.Error("saving submission failed", map[string]interface{}{"error": err})
		return nil, &SubmissionError{Stage: StagePersist, SubmissionID: submissionID, Err: err}
	}

	b.recorder.RecordSubmission("success", b.now().Sub(start))
	log.Info("submission saved", map[string]interface{}{"databaseId": saved.DatabaseID})
	return saved, nil
}

// uploadAll runs the plan concurrently and waits for every upload. The
// first failure cancels the others and is returned.
func (b *Builder) uploadAll(ctx context.Context, email, submissionID string, plan []*upload) error {
	g, gctx := errgroup.WithContext(ctx)
	if b.concurrency > 0 {
		g.SetLimit(b.concurrency)
	}

	for _, u := range plan {
		u := u
		g.Go(func() error {
			started := time.Now()
			url, err := b.uploader.UploadSingleFile(gctx, email, u.slot, submissionID, u.file)
			if err == nil && url == "" {
				err = errors.New("storage returned an empty url")
			}
			b.recorder.RecordUpload(u.slot, err, time.Since(started))
			if err != nil {
				return &SubmissionError{Stage: StageUpload, SubmissionID: submissionID, Slot: u.slot, Err: err}
			}
			u.url = url
			return nil
		})
	}
	return g.Wait()
}

func assemble(f *models.ApplicationForm, plan []*upload, now time.Time) models.SubmissionData {
	data := models.SubmissionData{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Nationality: f.Nationality,
		Email:       f.Email,
		Choice1:     f.Choice1,
		Choice2:     f.Choice2,
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}
	for _, u := range plan {
		data.FileURLs.Set(u.slot, u.url)
	}
	return data
}

// Recorders fans metrics out to several recorders.
type Recorders []Recorder

func (rs Recorders) RecordUpload(slot models.Slot, err error, d time.Duration) {
	for _, r := range rs {
		r.RecordUpload(slot, err, d)
	}
}

func (rs Recorders) RecordSubmission(outcome string, d time.Duration) {
	for _, r := range rs {
		r.RecordSubmission(outcome, d)
	}
}

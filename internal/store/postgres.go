package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS mobility_submissions (
	id         UUID PRIMARY KEY,
	email      TEXT NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS mobility_submissions_email_idx
	ON mobility_submissions (lower(email), created_at DESC);
CREATE TABLE IF NOT EXISTS audit_log (
	id            BIGSERIAL PRIMARY KEY,
	event_type    TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	resource_id   TEXT NOT NULL,
	details       JSONB,
	created_at    TIMESTAMPTZ NOT NULL
);`

// PostgresStore keeps each submission as a JSONB document.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-store"}),
		now:    time.Now,
	}
}

// EnsureSchema creates the tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveSubmission(ctx context.Context, data models.SubmissionData) (*models.SubmissionMetaDb, error) {
	if err := ValidateRecord(data); err != nil {
		return nil, err
	}
	doc, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, data.CreatedAt)
	if err != nil {
		createdAt = s.now().UTC()
	}
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO mobility_submissions (id, email, document, created_at)
		VALUES ($1, $2, $3, $4)`,
		id, data.Email, doc, createdAt,
	); err != nil {
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"email":   data.Email,
		"school1": data.Choice1.SchoolName,
		"school2": data.Choice2.SchoolName,
	})
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"SUBMISSION_CREATED", "submission", id, details, s.now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("failed to write audit log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	s.logger.Info("submission stored", map[string]interface{}{"databaseId": id, "email": data.Email})
	return &models.SubmissionMetaDb{SubmissionData: data, DatabaseID: id}, nil
}

func (s *PostgresStore) GetMySubmission(ctx context.Context, email string) (*models.SubmissionMetaDb, error) {
	var (
		id  string
		doc []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document FROM mobility_submissions
		WHERE lower(email) = lower($1)
		ORDER BY created_at DESC
		LIMIT 1`, email,
	).Scan(&id, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query submission: %w", err)
	}
	return decodeRecord(doc, id)
}

func (s *PostgresStore) ListAllSubmissions(ctx context.Context) ([]models.SubmissionMetaDb, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document FROM mobility_submissions
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var out []models.SubmissionMetaDb
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		rec, err := decodeRecord(doc, id)
		if err != nil {
			s.logger.Warn("skipping unreadable submission", map[string]interface{}{"databaseId": id, "error": err})
			continue
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return out, nil
}

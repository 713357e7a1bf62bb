package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dianabombi/student-advisor-sub000/constants"
	"github.com/dianabombi/student-advisor-sub000/internal/common"
	"github.com/dianabombi/student-advisor-sub000/internal/entity"
)

// JobRepository persists processing job records and their progress
// transitions.
type JobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create opens a PENDING job for a file.
func (r *JobRepository) Create(ctx context.Context, fileID uuid.UUID, format constants.FileFormat) (*entity.ProcessingJob, error) {
	job := &entity.ProcessingJob{
		ID:        uuid.New(),
		FileID:    fileID,
		Format:    string(format),
		Status:    string(constants.JobStatusPending),
		Progress:  0,
		StartedAt: time.Now().UTC(),
	}
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`INSERT INTO processing_jobs (id, file_id, format, status, progress, low_confidence, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		job.ID.String(), job.FileID.String(), job.Format, job.Status, job.Progress, false, job.StartedAt,
	)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorageFailure, "insert processing job", err)
	}
	return job, nil
}

// MarkProcessing flips a job to PROCESSING. No-op if already past PENDING.
func (r *JobRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`UPDATE processing_jobs SET status = ? WHERE id = ? AND status = ?`),
		string(constants.JobStatusProcessing), id.String(), string(constants.JobStatusPending),
	)
	if err != nil {
		return common.NewAppError(common.CodeStorageFailure, "mark job processing", err)
	}
	return nil
}

// UpdateProgress advances the checkpoint. Progress never moves backwards
// while a job is in flight, so stale writers cannot regress it.
func (r *JobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error {
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`UPDATE processing_jobs SET progress = ? WHERE id = ? AND status = ? AND progress < ?`),
		progress, id.String(), string(constants.JobStatusProcessing), progress,
	)
	if err != nil {
		return common.NewAppError(common.CodeStorageFailure, "update job progress", err)
	}
	return nil
}

// FinishSuccess records the terminal COMPLETED state with the
// classification and extraction payload.
func (r *JobRepository) FinishSuccess(ctx context.Context, id uuid.UUID, docType string, confidence float64, lowConfidence bool, extracted json.RawMessage) error {
	now := time.Now().UTC()
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`UPDATE processing_jobs
		 SET status = ?, progress = ?, document_type = ?, confidence = ?, low_confidence = ?, extracted_json = ?, finished_at = ?
		 WHERE id = ?`),
		string(constants.JobStatusCompleted), constants.ProgressCompleted, docType, confidence, lowConfidence, string(extracted), now, id.String(),
	)
	if err != nil {
		return common.NewAppError(common.CodeStorageFailure, "finish job", err)
	}
	return nil
}

// FinishFailure records the terminal FAILED state. Progress resets to zero
// so a failed job never reads as partially done.
func (r *JobRepository) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now().UTC()
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`UPDATE processing_jobs SET status = ?, progress = 0, error_message = ?, finished_at = ? WHERE id = ?`),
		string(constants.JobStatusFailed), message, now, id.String(),
	)
	if err != nil {
		return common.NewAppError(common.CodeStorageFailure, "fail job", err)
	}
	return nil
}

// GetByID fetches one job.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ProcessingJob, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(
		jobColumns+` WHERE id = ?`), id.String())
	return scanJob(row)
}

// ListByStatus fetches jobs in a given state, newest first.
func (r *JobRepository) ListByStatus(ctx context.Context, status constants.JobStatus, limit int) ([]*entity.ProcessingJob, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(
		jobColumns+` WHERE status = ? ORDER BY started_at DESC LIMIT ?`),
		string(status), limit,
	)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorageFailure, "list jobs", err)
	}
	defer rows.Close()

	var jobs []*entity.ProcessingJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

const jobColumns = `SELECT id, file_id, format, status, progress, document_type, confidence, low_confidence, extracted_json, error_message, started_at, finished_at
	 FROM processing_jobs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*entity.ProcessingJob, error) {
	var (
		job       entity.ProcessingJob
		idStr     string
		fileIDStr string
		docType   sql.NullString
		conf      sql.NullFloat64
		extracted sql.NullString
		errMsg    sql.NullString
		finished  sql.NullTime
	)
	err := row.Scan(&idStr, &fileIDStr, &job.Format, &job.Status, &job.Progress,
		&docType, &conf, &job.LowConfidence, &extracted, &errMsg, &job.StartedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeStorageFailure, "scan processing job", err)
	}
	if job.ID, err = uuid.Parse(idStr); err != nil {
		return nil, common.NewAppError(common.CodeStorageFailure, "parse job id", err)
	}
	if job.FileID, err = uuid.Parse(fileIDStr); err != nil {
		return nil, common.NewAppError(common.CodeStorageFailure, "parse job file id", err)
	}
	if docType.Valid {
		job.DocumentType = &docType.String
	}
	if conf.Valid {
		job.Confidence = &conf.Float64
	}
	if extracted.Valid && extracted.String != "" {
		job.ExtractedJSON = json.RawMessage(extracted.String)
	}
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if finished.Valid {
		job.FinishedAt = &finished.Time
	}
	return &job, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dianabombi/student-advisor-sub000/constants"
	"github.com/dianabombi/student-advisor-sub000/internal/common"
	"github.com/dianabombi/student-advisor-sub000/internal/entity"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	db, err := Open(context.Background(), common.DatabaseConfig{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func testFile(t *testing.T, files *FileRepository, hash byte) *entity.DocumentFile {
	t.Helper()
	f, created, err := files.GetOrCreate(context.Background(), &entity.DocumentFile{
		SourcePath:  "/data/in/doc.pdf",
		ContentHash: []byte{hash, 2, 3, 4},
		Filename:    "doc.pdf",
		FileExt:     "pdf",
		FileSize:    1234,
	})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !created {
		t.Fatalf("expected a fresh record")
	}
	return f
}

func TestFileDeduplicationByHash(t *testing.T) {
	db := testDB(t)
	files := NewFileRepository(db)
	ctx := context.Background()

	first := testFile(t, files, 1)

	again, created, err := files.GetOrCreate(ctx, &entity.DocumentFile{
		SourcePath:  "/data/in/copy-of-doc.pdf",
		ContentHash: []byte{1, 2, 3, 4},
		Filename:    "copy-of-doc.pdf",
		FileExt:     "pdf",
		FileSize:    1234,
	})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if created {
		t.Fatalf("same content must deduplicate")
	}
	if again.ID != first.ID {
		t.Fatalf("dedup returned a different record")
	}

	byID, err := files.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Filename != "doc.pdf" || len(byID.ContentHash) != 4 {
		t.Fatalf("round trip mismatch: %+v", byID)
	}
}

func TestFileNotFound(t *testing.T) {
	db := testDB(t)
	files := NewFileRepository(db)

	_, err := files.GetByHash(context.Background(), []byte{9, 9, 9})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestJobLifecycle(t *testing.T) {
	db := testDB(t)
	files := NewFileRepository(db)
	jobs := NewJobRepository(db)
	ctx := context.Background()

	f := testFile(t, files, 7)

	job, err := jobs.Create(ctx, f.ID, constants.PDF)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.Status != string(constants.JobStatusPending) || job.Progress != 0 {
		t.Fatalf("fresh job state: %+v", job)
	}

	if err := jobs.MarkProcessing(ctx, job.ID); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	for _, p := range []int{constants.ProgressAccepted, constants.ProgressOCRDone, constants.ProgressClassified} {
		if err := jobs.UpdateProgress(ctx, job.ID, p); err != nil {
			t.Fatalf("UpdateProgress(%d): %v", p, err)
		}
	}

	// stale writer must not regress progress
	if err := jobs.UpdateProgress(ctx, job.ID, constants.ProgressAccepted); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	got, err := jobs.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Progress != constants.ProgressClassified {
		t.Fatalf("progress = %d, want %d", got.Progress, constants.ProgressClassified)
	}
	if got.Status != string(constants.JobStatusProcessing) {
		t.Fatalf("status = %q", got.Status)
	}

	payload := json.RawMessage(`{"fields":{},"metadata":{"document_type":"invoice","extracted_at":"2024-01-01T00:00:00Z","field_count":0}}`)
	if err := jobs.FinishSuccess(ctx, job.ID, "invoice", 0.87, false, payload); err != nil {
		t.Fatalf("FinishSuccess: %v", err)
	}

	done, err := jobs.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if done.Status != string(constants.JobStatusCompleted) {
		t.Fatalf("status = %q, want COMPLETED", done.Status)
	}
	if done.Progress != constants.ProgressCompleted {
		t.Fatalf("progress = %d, want %d", done.Progress, constants.ProgressCompleted)
	}
	if done.DocumentType == nil || *done.DocumentType != "invoice" {
		t.Fatalf("document type = %v", done.DocumentType)
	}
	if done.Confidence == nil || *done.Confidence != 0.87 {
		t.Fatalf("confidence = %v", done.Confidence)
	}
	if done.FinishedAt == nil {
		t.Fatalf("finished_at missing")
	}
	if string(done.ExtractedJSON) != string(payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestJobFailureResetsProgress(t *testing.T) {
	db := testDB(t)
	files := NewFileRepository(db)
	jobs := NewJobRepository(db)
	ctx := context.Background()

	f := testFile(t, files, 8)
	job, err := jobs.Create(ctx, f.ID, constants.IMAGE)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := jobs.MarkProcessing(ctx, job.ID); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := jobs.UpdateProgress(ctx, job.ID, constants.ProgressOCRDone); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if err := jobs.FinishFailure(ctx, job.ID, "OCR_FAILED: no backend"); err != nil {
		t.Fatalf("FinishFailure: %v", err)
	}

	got, err := jobs.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != string(constants.JobStatusFailed) {
		t.Fatalf("status = %q, want FAILED", got.Status)
	}
	if got.Progress != 0 {
		t.Fatalf("progress = %d, want 0 after failure", got.Progress)
	}
	if got.ErrorMessage == nil || *got.ErrorMessage == "" {
		t.Fatalf("error message missing")
	}

	failed, err := jobs.ListByStatus(ctx, constants.JobStatusFailed, 10)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(failed) != 1 {
		t.Fatalf("failed jobs = %d, want 1", len(failed))
	}
}

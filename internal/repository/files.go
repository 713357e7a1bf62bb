package repository

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dianabombi/student-advisor-sub000/internal/common"
	"github.com/dianabombi/student-advisor-sub000/internal/entity"
)

// FileRepository persists document file records keyed by content hash for
// deduplication.
type FileRepository struct {
	db *DB
}

func NewFileRepository(db *DB) *FileRepository {
	return &FileRepository{db: db}
}

// GetOrCreate inserts the file record unless one with the same content hash
// already exists. The second return is true when the record was created.
func (r *FileRepository) GetOrCreate(ctx context.Context, f *entity.DocumentFile) (*entity.DocumentFile, bool, error) {
	if existing, err := r.GetByHash(ctx, f.ContentHash); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`INSERT INTO document_files (id, source_path, content_hash, filename, file_ext, file_size, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		f.ID.String(), f.SourcePath, hex.EncodeToString(f.ContentHash), f.Filename, f.FileExt, f.FileSize, f.UploadedAt,
	)
	if err != nil {
		return nil, false, common.NewAppError(common.CodeStorageFailure, "insert document file", err)
	}
	return f, true, nil
}

// GetByHash looks a file up by its content hash.
func (r *FileRepository) GetByHash(ctx context.Context, hash []byte) (*entity.DocumentFile, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(
		`SELECT id, source_path, content_hash, filename, file_ext, file_size, uploaded_at
		 FROM document_files WHERE content_hash = ?`),
		hex.EncodeToString(hash),
	)
	return scanFile(row)
}

// GetByID looks a file up by primary key.
func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.DocumentFile, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(
		`SELECT id, source_path, content_hash, filename, file_ext, file_size, uploaded_at
		 FROM document_files WHERE id = ?`),
		id.String(),
	)
	return scanFile(row)
}

func scanFile(row *sql.Row) (*entity.DocumentFile, error) {
	var (
		f       entity.DocumentFile
		idStr   string
		hashHex string
	)
	err := row.Scan(&idStr, &f.SourcePath, &hashHex, &f.Filename, &f.FileExt, &f.FileSize, &f.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeStorageFailure, "scan document file", err)
	}
	if f.ID, err = uuid.Parse(idStr); err != nil {
		return nil, common.NewAppError(common.CodeStorageFailure, "parse file id", err)
	}
	if f.ContentHash, err = hex.DecodeString(hashHex); err != nil {
		return nil, common.NewAppError(common.CodeStorageFailure, "decode content hash", err)
	}
	return &f, nil
}

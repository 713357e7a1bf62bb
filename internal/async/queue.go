package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is one unit of pipeline work.
type Job struct {
	FileID      uuid.UUID
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

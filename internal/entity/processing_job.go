package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProcessingJob is the end-to-end tracking record for one uploaded document.
// Progress is monotonically non-decreasing while Status is PROCESSING.
type ProcessingJob struct {
	ID            uuid.UUID       `json:"id"`
	FileID        uuid.UUID       `json:"file_id"`
	Format        string          `json:"format"`
	Status        string          `json:"status"`
	Progress      int             `json:"progress"`
	DocumentType  *string         `json:"document_type,omitempty"`
	Confidence    *float64        `json:"confidence,omitempty"`
	LowConfidence bool            `json:"low_confidence"`
	ExtractedJSON json.RawMessage `json:"extracted_json,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
}

package constants

// JobStatus is the canonical status for processing job records.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusPending    JobStatus = "PENDING"    // accepted, waiting for a worker
	JobStatusProcessing JobStatus = "PROCESSING" // in progress
	JobStatusCompleted  JobStatus = "COMPLETED"  // terminal success (possibly low-confidence)
	JobStatusFailed     JobStatus = "FAILED"     // terminal failure
)

// Progress checkpoints reported by the pipeline while a job is PROCESSING.
// Callers polling a job record see these values monotonically non-decreasing.
const (
	ProgressAccepted   = 10  // job picked up by a worker
	ProgressOCRDone    = 30  // text available for every page
	ProgressClassified = 50  // document type decided
	ProgressExtracted  = 70  // fields pulled from text
	ProgressPersisted  = 90  // derived artifacts stored
	ProgressCompleted  = 100 // terminal
)

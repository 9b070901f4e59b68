package model

import "time"

// Job represents a background job in the system. Jobs are stored as JSON
// blobs in Redis under job:<id> and mutated only by their owning worker
// (or the cancel endpoint, which may flip a non-terminal job to canceled).
type Job struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      JobStatus  `json:"status"`
	Progress    float64    `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Payload     []byte     `json:"payload,omitempty"` // JSON-encoded job input
	Result      []byte     `json:"result,omitempty"`  // JSON-encoded job output
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Job types
const (
	JobTypeCover = "cover"
)

// CoverJobPayload contains the data for a cover generation job.
type CoverJobPayload struct {
	Filename string `json:"filename"`
	Prompt   string `json:"prompt"`
	Tags     string `json:"tags"`
}

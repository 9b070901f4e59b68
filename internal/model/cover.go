package model

import "time"

// CoverStartRequest asks for an AI cover of a previously generated song.
// Filename must name an artifact in the output store.
type CoverStartRequest struct {
	Filename string `json:"filename" validate:"required"`
	Prompt   string `json:"prompt" validate:"required,min=3,max=500"`
	Tags     string `json:"tags" validate:"omitempty,max=200"`
}

// CoverStartResponse is returned when a cover job is queued.
type CoverStartResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// CoverStatusResponse reports where a cover job currently stands.
type CoverStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    float64    `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// CoverResultResponse is the payload of a succeeded cover job.
type CoverResultResponse struct {
	Filename  string    `json:"filename"`
	AudioURL  string    `json:"audioUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CoverCancelResponse acknowledges a cancellation request.
type CoverCancelResponse struct {
	Success bool      `json:"success"`
	JobID   string    `json:"jobId"`
	Status  JobStatus `json:"status"`
}

package model

// Job status
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
	JobStatusTimedOut  JobStatus = "timed_out"
)

// IsTerminal reports whether a job can no longer change state.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCanceled, JobStatusTimedOut:
		return true
	}
	return false
}

// Sequence generation modes
type SequenceMode string

const (
	SequenceModeRealistic SequenceMode = "realistic"
	SequenceModeUniform   SequenceMode = "uniform"
)

// Package cover drives a remote AI cover-generation task to a terminal
// state: submit, poll with a fixed cadence, cancel cooperatively.
package cover

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dnalifesong/api/internal/client"
)

// TaskState is the client-side view of a remote task. Canceled and
// TimedOut are determined by this client; Succeeded and Failed come from
// the remote service's own status field.
type TaskState string

const (
	StatePending   TaskState = "pending"
	StateSucceeded TaskState = "succeeded"
	StateFailed    TaskState = "failed"
	StateCanceled  TaskState = "canceled"
	StateTimedOut  TaskState = "timed_out"
)

// Default polling policy: 5s between polls, 40 attempts (~200s ceiling).
const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 40
)

// Synthetic progress ramp reported to callers while the remote task runs.
// The server exposes no real progress, so polls map to a monotonically
// non-decreasing estimate capped below completion.
const (
	progressBase = 10.0
	progressStep = 2.25
	progressCap  = 95.0
	progressDone = 100.0
)

// StatusChecker queries a remote task's status once. Satisfied by
// *client.MusicAPIClient; tests substitute fakes.
type StatusChecker interface {
	CheckStatus(ctx context.Context, taskID string) (*client.TaskStatus, error)
}

// ProgressFunc receives synthetic progress estimates in [0,100].
type ProgressFunc func(progress float64)

// CancelFunc reports whether the caller wants to stop observing the task.
// It is consulted before every poll; cancellation is cooperative only and
// does not stop the remote job.
type CancelFunc func() bool

// Outcome is the terminal result of a wait. Exactly one of the four
// terminal states is set, and Reason is always human-readable.
type Outcome struct {
	State     TaskState
	ResultURL string
	Reason    string
	Attempts  int
}

// Succeeded reports whether the task produced a result.
func (o Outcome) Succeeded() bool { return o.State == StateSucceeded }

// Poller polls a remote task at a fixed interval until it reaches a
// terminal state, the attempt budget runs out, or the caller cancels.
// Each workflow should use its own ctx so concurrent pipelines stay
// independently cancellable.
type Poller struct {
	checker     StatusChecker
	interval    time.Duration
	maxAttempts int
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the fixed inter-poll delay.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithMaxAttempts overrides the poll attempt budget.
func WithMaxAttempts(n int) Option {
	return func(p *Poller) { p.maxAttempts = n }
}

// NewPoller creates a Poller with the default fixed-interval policy.
// There is deliberately no backoff: the remote service expects a steady
// cadence and the budget bounds total wait time.
func NewPoller(checker StatusChecker, opts ...Option) *Poller {
	p := &Poller{
		checker:     checker,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WaitToCompletion polls taskID until a terminal outcome. Transient
// errors from individual polls are logged and absorbed; only an explicit
// terminal status from the service, cancellation, or an exhausted attempt
// budget ends the loop. onProgress and isCanceled may be nil.
func (p *Poller) WaitToCompletion(ctx context.Context, taskID string, onProgress ProgressFunc, isCanceled CancelFunc) Outcome {
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if isCanceled != nil && isCanceled() {
			return Outcome{
				State:    StateCanceled,
				Reason:   "cover generation canceled by user",
				Attempts: attempt,
			}
		}
		if err := ctx.Err(); err != nil {
			return Outcome{
				State:    StateCanceled,
				Reason:   fmt.Sprintf("cover generation canceled: %v", err),
				Attempts: attempt,
			}
		}

		status, err := p.checker.CheckStatus(ctx, taskID)
		switch {
		case err != nil:
			// Transient: a single failed poll never fails the task.
			log.Printf("[Poller] poll #%d (task=%s) — transient error: %v", attempt+1, taskID, err)

		case status.State == client.TaskStateSucceeded:
			if onProgress != nil {
				onProgress(progressDone)
			}
			return Outcome{
				State:     StateSucceeded,
				ResultURL: status.AudioURL,
				Reason:    "cover generation succeeded",
				Attempts:  attempt + 1,
			}

		case status.State == client.TaskStateFailed:
			return Outcome{
				State:    StateFailed,
				Reason:   fmt.Sprintf("cover generation failed: %s", status.Error),
				Attempts: attempt + 1,
			}

		default:
			log.Printf("[Poller] poll #%d (task=%s) — state: %s", attempt+1, taskID, status.State)
			if onProgress != nil {
				onProgress(syntheticProgress(attempt))
			}
		}

		if attempt == p.maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return Outcome{
				State:    StateCanceled,
				Reason:   fmt.Sprintf("cover generation canceled: %v", ctx.Err()),
				Attempts: attempt + 1,
			}
		case <-time.After(p.interval):
		}
	}

	return Outcome{
		State:    StateTimedOut,
		Reason:   fmt.Sprintf("cover generation timed out after %d polls", p.maxAttempts),
		Attempts: p.maxAttempts,
	}
}

// syntheticProgress maps a zero-based attempt index to the capped ramp.
func syntheticProgress(attempt int) float64 {
	progress := progressBase + float64(attempt)*progressStep
	if progress > progressCap {
		return progressCap
	}
	return progress
}

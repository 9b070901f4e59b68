package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dnalifesong/api/internal/model"
	"github.com/dnalifesong/api/internal/storage"
)

// newTestCoverService connects to the local test Redis (DB 15). Tests
// are skipped when no Redis is reachable.
func newTestCoverService(t *testing.T) *CoverService {
	t.Helper()

	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	return NewCoverService(redisClient, nil, store)
}

// seedJob writes a job directly into Redis and cleans it up after the test.
func seedJob(t *testing.T, s *CoverService, status model.JobStatus, progress float64) *model.Job {
	t.Helper()

	now := time.Now()
	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      model.JobTypeCover,
		Status:    status,
		Progress:  progress,
		CreatedAt: now,
	}
	if status.IsTerminal() {
		job.CompletedAt = &now
	}

	if err := s.saveJob(context.Background(), job); err != nil {
		t.Fatalf("failed to seed job: %v", err)
	}
	t.Cleanup(func() {
		s.redis.Del(context.Background(), fmt.Sprintf("job:%s", job.ID))
	})
	return job
}

func TestCompleteJob_CanceledJobStaysCanceled(t *testing.T) {
	s := newTestCoverService(t)
	ctx := context.Background()
	job := seedJob(t, s, model.JobStatusCanceled, 35)

	result := &model.CoverResultResponse{Filename: "cover_late.mp3", AudioURL: "https://cdn.example.com/late.mp3"}
	if err := s.CompleteJob(ctx, job.ID, result); err == nil {
		t.Fatal("expected error when completing a canceled job")
	}

	stored, err := s.getJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("failed to reload job: %v", err)
	}
	if stored.Status != model.JobStatusCanceled {
		t.Errorf("canceled job was overwritten to %s", stored.Status)
	}
	if len(stored.Result) != 0 {
		t.Errorf("canceled job must not carry a result, got %s", stored.Result)
	}
}

func TestFinishJob_CanceledJobNotOverwritten(t *testing.T) {
	s := newTestCoverService(t)
	ctx := context.Background()
	job := seedJob(t, s, model.JobStatusCanceled, 35)

	if err := s.FinishJob(ctx, job.ID, model.JobStatusFailed, "late failure"); err == nil {
		t.Fatal("expected error when failing a canceled job")
	}

	stored, err := s.getJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("failed to reload job: %v", err)
	}
	if stored.Status != model.JobStatusCanceled {
		t.Errorf("canceled job was overwritten to %s", stored.Status)
	}
	if stored.Error != nil {
		t.Errorf("canceled job must not pick up a failure message, got %q", *stored.Error)
	}
}

func TestFinishJob_SameTerminalStatusIsNoop(t *testing.T) {
	s := newTestCoverService(t)
	ctx := context.Background()
	job := seedJob(t, s, model.JobStatusCanceled, 35)

	// The worker confirming a cancellation it observed must not error.
	if err := s.FinishJob(ctx, job.ID, model.JobStatusCanceled, "canceled by user"); err != nil {
		t.Fatalf("confirming an existing terminal status should be a no-op, got %v", err)
	}

	stored, err := s.getJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("failed to reload job: %v", err)
	}
	if stored.Status != model.JobStatusCanceled {
		t.Errorf("unexpected status %s", stored.Status)
	}
}

func TestUpdateJobProgress_TerminalJobUnchanged(t *testing.T) {
	s := newTestCoverService(t)
	ctx := context.Background()
	job := seedJob(t, s, model.JobStatusCanceled, 42)

	if err := s.UpdateJobProgress(ctx, job.ID, 80, "Generating cover..."); err != nil {
		t.Fatalf("progress update on terminal job should be a no-op, got %v", err)
	}

	stored, err := s.getJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("failed to reload job: %v", err)
	}
	if stored.Progress != 42 {
		t.Errorf("terminal job progress changed to %v", stored.Progress)
	}
	if stored.Status != model.JobStatusCanceled {
		t.Errorf("terminal job status changed to %s", stored.Status)
	}
}

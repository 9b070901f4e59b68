package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/dnalifesong/api/internal/model"
	"github.com/dnalifesong/api/internal/storage"
)

const (
	TaskTypeCover = "cover:process"
)

// CoverService handles cover job management. Jobs live in Redis as JSON
// blobs; workers own all transitions except cancellation, which any
// caller may request while the job is non-terminal.
type CoverService struct {
	redis       *redis.Client
	asynqClient *asynq.Client
	store       *storage.LocalStore
}

func NewCoverService(redisClient *redis.Client, asynqClient *asynq.Client, store *storage.LocalStore) *CoverService {
	return &CoverService{
		redis:       redisClient,
		asynqClient: asynqClient,
		store:       store,
	}
}

// StartCover queues a new cover generation job for an existing artifact.
func (s *CoverService) StartCover(ctx context.Context, req *model.CoverStartRequest) (*model.CoverStartResponse, error) {
	if _, err := s.store.Resolve(req.Filename); err != nil {
		return nil, fmt.Errorf("source audio not found: %s", req.Filename)
	}

	jobID := uuid.New().String()
	now := time.Now()

	job := &model.Job{
		ID:        jobID,
		Type:      model.JobTypeCover,
		Status:    model.JobStatusQueued,
		Progress:  0,
		CreatedAt: now,
	}

	payload := &model.CoverJobPayload{
		Filename: req.Filename,
		Prompt:   req.Prompt,
		Tags:     req.Tags,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	job.Payload = payloadBytes

	if err := s.saveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	task, err := newCoverTask(jobID, payloadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	_, err = s.asynqClient.Enqueue(task,
		asynq.Queue("cover"),
		asynq.MaxRetry(0), // the poll loop already bounds the work
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return &model.CoverStartResponse{
		JobID:     jobID,
		Status:    model.JobStatusQueued,
		CreatedAt: now,
	}, nil
}

// GetStatus returns the current status of a cover job
func (s *CoverService) GetStatus(ctx context.Context, jobID string) (*model.CoverStatusResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &model.CoverStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}, nil
}

// GetResult returns the result of a succeeded cover job
func (s *CoverService) GetResult(ctx context.Context, jobID string) (*model.CoverResultResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != model.JobStatusSucceeded {
		return nil, fmt.Errorf("job not completed")
	}

	var result model.CoverResultResponse
	if err := json.Unmarshal(job.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// Cancel requests cancellation of a non-terminal cover job. The worker
// observes the flipped status at its next poll; cancellation does not
// stop the remote generation.
func (s *CoverService) Cancel(ctx context.Context, jobID string) (*model.CoverCancelResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status.IsTerminal() {
		return nil, fmt.Errorf("job already completed")
	}

	job.Status = model.JobStatusCanceled
	now := time.Now()
	job.CompletedAt = &now

	if err := s.saveJob(ctx, job); err != nil {
		return nil, err
	}

	return &model.CoverCancelResponse{
		Success: true,
		JobID:   jobID,
		Status:  model.JobStatusCanceled,
	}, nil
}

// IsCanceled reports whether the job was flipped to canceled. Used by
// workers as their cancellation predicate.
func (s *CoverService) IsCanceled(ctx context.Context, jobID string) bool {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return false
	}
	return job.Status == model.JobStatusCanceled
}

// UpdateJobProgress updates job progress (called by worker). A queued job
// moves to running on its first progress update.
func (s *CoverService) UpdateJobProgress(ctx context.Context, jobID string, progress float64, step string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return nil
	}

	job.Progress = progress
	job.CurrentStep = step

	if job.Status == model.JobStatusQueued {
		job.Status = model.JobStatusRunning
		now := time.Now()
		job.StartedAt = &now
	}

	return s.saveJob(ctx, job)
}

// CompleteJob marks job as succeeded (called by worker). A job that
// already reached a terminal status keeps it; a late-finishing worker
// must not resurrect a canceled job.
func (s *CoverService) CompleteJob(ctx context.Context, jobID string, result interface{}) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("job already completed")
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return err
	}

	job.Status = model.JobStatusSucceeded
	job.Progress = 100
	job.Result = resultBytes
	now := time.Now()
	job.CompletedAt = &now

	return s.saveJob(ctx, job)
}

// FinishJob moves the job to a terminal non-success status (called by
// worker). Timed-out jobs stay distinguishable from failed ones.
func (s *CoverService) FinishJob(ctx context.Context, jobID string, status model.JobStatus, errMsg string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		// A worker confirming an endpoint-driven cancellation is not a
		// conflict.
		if job.Status == status {
			return nil
		}
		return fmt.Errorf("job already completed")
	}

	job.Status = status
	if errMsg != "" {
		job.Error = &errMsg
	}
	now := time.Now()
	job.CompletedAt = &now

	return s.saveJob(ctx, job)
}

// Helper methods

func (s *CoverService) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, fmt.Sprintf("job:%s", job.ID), data, 24*time.Hour).Err()
}

func (s *CoverService) getJob(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.redis.Get(ctx, fmt.Sprintf("job:%s", jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("job not found")
		}
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

func newCoverTask(jobID string, payload []byte) (*asynq.Task, error) {
	taskPayload := map[string]interface{}{
		"jobId":   jobID,
		"payload": payload,
	}
	data, err := json.Marshal(taskPayload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeCover, data), nil
}

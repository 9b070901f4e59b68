package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/dnalifesong/api/internal/client"
	"github.com/dnalifesong/api/internal/cover"
	"github.com/dnalifesong/api/internal/model"
	"github.com/dnalifesong/api/internal/service"
	"github.com/dnalifesong/api/internal/storage"
	"github.com/dnalifesong/api/internal/websocket"
	"github.com/dnalifesong/api/pkg/response"
)

// CoverWorker processes cover generation jobs: upload the source audio,
// start the remote task, poll it to a terminal state and download the
// finished cover.
type CoverWorker struct {
	coverService *service.CoverService
	musicClient  client.CoverGenerator
	poller       *cover.Poller
	store        *storage.LocalStore
	mirror       storage.ArtifactStore // optional, nil disables mirroring
	hub          *websocket.Hub
}

func NewCoverWorker(coverService *service.CoverService, musicClient client.CoverGenerator, poller *cover.Poller, store *storage.LocalStore, mirror storage.ArtifactStore, hub *websocket.Hub) *CoverWorker {
	return &CoverWorker{
		coverService: coverService,
		musicClient:  musicClient,
		poller:       poller,
		store:        store,
		mirror:       mirror,
		hub:          hub,
	}
}

// ProcessTask handles cover task processing
func (w *CoverWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var taskPayload struct {
		JobID   string          `json:"jobId"`
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(t.Payload(), &taskPayload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	jobID := taskPayload.JobID
	log.Printf("Starting cover job: %s", jobID)

	var payload model.CoverJobPayload
	if err := json.Unmarshal(taskPayload.Payload, &payload); err != nil {
		w.failJob(ctx, jobID, model.JobStatusFailed, "Invalid payload")
		return fmt.Errorf("failed to unmarshal cover payload: %w", err)
	}

	sourcePath, err := w.store.Resolve(payload.Filename)
	if err != nil {
		w.failJob(ctx, jobID, model.JobStatusFailed, fmt.Sprintf("Source audio missing: %v", err))
		return err
	}

	w.updateProgress(ctx, jobID, 2, "Uploading audio...")
	clipID, err := w.musicClient.Upload(ctx, sourcePath)
	if err != nil {
		w.failJob(ctx, jobID, model.JobStatusFailed, fmt.Sprintf("Audio upload failed: %v", err))
		return err
	}

	w.updateProgress(ctx, jobID, 5, "Starting cover generation...")
	taskID, err := w.musicClient.CreateCover(ctx, clipID, payload.Prompt, payload.Tags)
	if err != nil {
		w.failJob(ctx, jobID, model.JobStatusFailed, fmt.Sprintf("Cover creation failed: %v", err))
		return err
	}

	outcome := w.poller.WaitToCompletion(ctx, taskID,
		func(progress float64) {
			w.updateProgress(ctx, jobID, progress, "Generating cover...")
		},
		func() bool {
			return w.coverService.IsCanceled(ctx, jobID)
		},
	)

	switch outcome.State {
	case cover.StateSucceeded:
		return w.finishSuccess(ctx, jobID, outcome.ResultURL)

	case cover.StateCanceled:
		w.failJob(ctx, jobID, model.JobStatusCanceled, outcome.Reason)
		w.hub.BroadcastError(jobID, response.CodeJobCanceled, outcome.Reason)
		log.Printf("Cover job %s canceled after %d polls", jobID, outcome.Attempts)
		return nil

	case cover.StateTimedOut:
		w.failJob(ctx, jobID, model.JobStatusTimedOut, outcome.Reason)
		w.hub.BroadcastError(jobID, response.CodeJobTimeout, outcome.Reason)
		log.Printf("Cover job %s timed out after %d polls", jobID, outcome.Attempts)
		return nil

	default:
		w.failJob(ctx, jobID, model.JobStatusFailed, outcome.Reason)
		w.hub.BroadcastError(jobID, response.CodeJobFailed, outcome.Reason)
		return fmt.Errorf("cover job %s failed: %s", jobID, outcome.Reason)
	}
}

func (w *CoverWorker) finishSuccess(ctx context.Context, jobID, audioURL string) error {
	filename := "cover_" + jobID + ".mp3"
	outputPath, err := w.store.PathFor(filename)
	if err != nil {
		w.failJob(ctx, jobID, model.JobStatusFailed, "Invalid output filename")
		return err
	}

	if err := w.musicClient.Download(ctx, audioURL, outputPath); err != nil {
		w.failJob(ctx, jobID, model.JobStatusFailed, fmt.Sprintf("Cover download failed: %v", err))
		return err
	}

	result := &model.CoverResultResponse{
		Filename:  filename,
		AudioURL:  audioURL,
		CreatedAt: time.Now(),
	}

	// The remote CDN link expires; a mirrored copy keeps the result
	// durable across restarts.
	if w.mirror != nil {
		if url, err := w.mirrorArtifact(ctx, filename, outputPath); err != nil {
			log.Printf("Failed to mirror cover %s: %v", filename, err)
		} else {
			result.AudioURL = url
		}
	}

	if err := w.coverService.CompleteJob(ctx, jobID, result); err != nil {
		w.failJob(ctx, jobID, model.JobStatusFailed, "Failed to save result")
		return err
	}

	w.hub.BroadcastComplete(jobID, result)
	log.Printf("Cover job %s completed", jobID)
	return nil
}

func (w *CoverWorker) mirrorArtifact(ctx context.Context, filename, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := "covers/" + filename
	publicURL, err := w.mirror.Upload(ctx, key, f, "audio/mpeg")
	if err != nil {
		return "", err
	}

	// Buckets without a public domain are only reachable through a
	// presigned link; its expiry matches the job retention window.
	signedURL, err := w.mirror.GetSignedURL(ctx, key, 24*time.Hour)
	if err != nil {
		log.Printf("Failed to presign mirrored cover %s: %v", key, err)
		return publicURL, nil
	}
	return signedURL, nil
}

func (w *CoverWorker) updateProgress(ctx context.Context, jobID string, progress float64, step string) {
	if err := w.coverService.UpdateJobProgress(ctx, jobID, progress, step); err != nil {
		log.Printf("Failed to update progress for job %s: %v", jobID, err)
	}
	w.hub.BroadcastProgress(jobID, progress, model.JobStatusRunning, step)
}

func (w *CoverWorker) failJob(ctx context.Context, jobID string, status model.JobStatus, errMsg string) {
	if err := w.coverService.FinishJob(ctx, jobID, status, errMsg); err != nil {
		log.Printf("Failed to finish job %s: %v", jobID, err)
	}
}

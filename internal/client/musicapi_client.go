package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dnalifesong/api/internal/config"
)

// CoverGenerator defines the interface for AI cover generation operations
type CoverGenerator interface {
	Upload(ctx context.Context, filePath string) (string, error)
	CreateCover(ctx context.Context, clipID, prompt, tags string) (string, error)
	CheckStatus(ctx context.Context, taskID string) (*TaskStatus, error)
	Download(ctx context.Context, audioURL, outputPath string) error
}

// Remote task states as reported by MusicAPI
const (
	TaskStatePending   = "pending"
	TaskStateSucceeded = "succeeded"
	TaskStateFailed    = "failed"
)

// TaskStatus is the normalized shape of one status check
type TaskStatus struct {
	State    string `json:"state"`
	AudioURL string `json:"audio_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// MusicAPIClient implements CoverGenerator against the MusicAPI sonic API.
// Audio files are first pushed to a temporary file host (litterbox, with
// file.io as fallback) because MusicAPI registers uploads by URL.
type MusicAPIClient struct {
	httpClient   *http.Client // quick API calls
	uploadClient *http.Client // file uploads and downloads
	baseURL      string
	litterboxURL string
	fileIOURL    string
	apiKey       string
}

// NewMusicAPIClient creates a new MusicAPI client
func NewMusicAPIClient(cfg *config.MusicAPIConfig) *MusicAPIClient {
	return &MusicAPIClient{
		httpClient: &http.Client{
			Timeout: cfg.ShortTimeout,
		},
		uploadClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:      cfg.BaseURL,
		litterboxURL: cfg.LitterboxURL,
		fileIOURL:    cfg.FileIOURL,
		apiKey:       cfg.APIKey,
	}
}

// IsConfigured returns true if the client has valid configuration
func (c *MusicAPIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Upload pushes a local audio file to a temporary file host and registers
// the resulting URL with MusicAPI, returning the clip ID.
func (c *MusicAPIClient) Upload(ctx context.Context, filePath string) (string, error) {
	fileURL, err := c.uploadToLitterbox(ctx, filePath)
	if err != nil {
		log.Printf("[MusicAPI] litterbox upload failed, trying file.io: %v", err)
		fileURL, err = c.uploadToFileIO(ctx, filePath)
	}
	if err != nil {
		return "", fmt.Errorf("all file upload services failed: %w", err)
	}
	if !strings.HasPrefix(fileURL, "http") {
		return "", fmt.Errorf("invalid upload response: %.100s", fileURL)
	}

	var result struct {
		ClipID  string `json:"clip_id"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := c.post(ctx, "/upload", map[string]string{"url": fileURL}, &result); err != nil {
		return "", err
	}
	if result.ClipID == "" {
		return "", fmt.Errorf("upload rejected: %s", firstNonEmpty(result.Message, result.Error, "unknown error"))
	}
	return result.ClipID, nil
}

// CreateCover starts AI cover generation for an uploaded clip and returns
// the remote task ID.
func (c *MusicAPIClient) CreateCover(ctx context.Context, clipID, prompt, tags string) (string, error) {
	body := map[string]interface{}{
		"task_type":        "cover_music",
		"custom_mode":      true,
		"continue_clip_id": clipID,
		"prompt":           prompt,
		"title":            "DNA Lifesong Cover",
		"tags":             tags,
		"mv":               "sonic-v5",
	}

	var result struct {
		TaskID  string `json:"task_id"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := c.post(ctx, "/create", body, &result); err != nil {
		return "", err
	}
	if result.TaskID == "" {
		return "", fmt.Errorf("cover creation rejected: %s", firstNonEmpty(result.Message, result.Error, "unknown error"))
	}
	return result.TaskID, nil
}

// CheckStatus queries the remote task once. The MusicAPI response carries
// a data array; the first track's state is the task state.
func (c *MusicAPIClient) CheckStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	var result struct {
		Data []struct {
			State    string `json:"state"`
			AudioURL string `json:"audio_url"`
			Error    string `json:"error"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/task/"+taskID, &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no data in status response for task %s", taskID)
	}

	track := result.Data[0]
	status := &TaskStatus{State: track.State}
	switch track.State {
	case TaskStateSucceeded:
		status.AudioURL = track.AudioURL
	case TaskStateFailed:
		status.Error = firstNonEmpty(track.Error, "generation failed")
	}
	return status, nil
}

// Download streams a finished cover to outputPath.
func (c *MusicAPIClient) Download(ctx context.Context, audioURL, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	log.Printf("[MusicAPI] → GET %s", audioURL)
	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download error (status %d)", resp.StatusCode)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	return nil
}

// uploadToLitterbox uploads to litterbox.catbox.moe (24h temporary hosting).
// The response body is the plain file URL.
func (c *MusicAPIClient) uploadToLitterbox(ctx context.Context, filePath string) (string, error) {
	fields := map[string]string{"reqtype": "fileupload", "time": "24h"}
	body, err := c.multipartUpload(ctx, c.litterboxURL, "fileToUpload", filePath, fields)
	if err != nil {
		return "", err
	}
	url := strings.TrimSpace(string(body))
	if !strings.HasPrefix(url, "http") {
		return "", fmt.Errorf("unexpected litterbox response: %.100s", url)
	}
	return url, nil
}

// uploadToFileIO uploads to file.io as a fallback host.
func (c *MusicAPIClient) uploadToFileIO(ctx context.Context, filePath string) (string, error) {
	body, err := c.multipartUpload(ctx, c.fileIOURL, "file", filePath, nil)
	if err != nil {
		return "", err
	}
	var result struct {
		Success bool   `json:"success"`
		Link    string `json:"link"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal file.io response: %w", err)
	}
	if !result.Success || result.Link == "" {
		return "", fmt.Errorf("file.io upload unsuccessful")
	}
	return result.Link, nil
}

// multipartUpload posts a local file as multipart/form-data and returns
// the raw response body.
func (c *MusicAPIClient) multipartUpload(ctx context.Context, url, fieldName, filePath string, fields map[string]string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	part, err := writer.CreateFormFile(fieldName, filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	log.Printf("[MusicAPI] → POST %s (multipart %s)", url, filepath.Base(filePath))
	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload host error (status %d): %.200s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// post sends a POST request with JSON body
func (c *MusicAPIClient) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// get sends a GET request and parses JSON response
func (c *MusicAPIClient) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// doRequest executes an HTTP request and parses the response
func (c *MusicAPIClient) doRequest(req *http.Request, result interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("[MusicAPI] → %s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[MusicAPI] ✗ %s %s — request failed: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[MusicAPI] ✗ %s %s — failed to read response: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[MusicAPI] ← %d %s %s", resp.StatusCode, req.Method, req.URL.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("musicapi error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/dnalifesong/api/internal/dna"
	"github.com/dnalifesong/api/internal/handler"
	"github.com/dnalifesong/api/internal/middleware"
	"github.com/dnalifesong/api/internal/render"
	"github.com/dnalifesong/api/internal/service"
	"github.com/dnalifesong/api/internal/storage"
)

const (
	testJWTSecret = "test-secret-for-e2e"
	testAccessKey = "test-access-key"
)

// testApp holds all components needed for testing
type testApp struct {
	app   *fiber.App
	store *storage.LocalStore
}

// setupApp creates a Fiber app identical to main.go but with a throwaway
// output dir and no MusicAPI configuration. Redis is only touched by the
// cover job endpoints, which these tests avoid past the validation layer.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setupAppWithAccessKey(t, testAccessKey)
}

// setupAppWithAccessKey builds the app with a specific configured access
// key; an empty key leaves the gate open as in an unconfigured deployment.
func setupAppWithAccessKey(t *testing.T, accessKey string) *testApp {
	t.Helper()

	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: "localhost:6379",
		DB:   15,
	})
	t.Cleanup(func() { asynqClient.Close() })

	validate := validator.New()

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	// Services
	sequenceService := service.NewSequenceService(dna.NewSeededGenerator(1))
	songService := service.NewSongService(render.NewMIDIRenderer(), nil, store)
	coverService := service.NewCoverService(redisClient, asynqClient, store)

	// Handlers
	sequenceHandler := handler.NewSequenceHandler(sequenceService, validate)
	songHandler := handler.NewSongHandler(songService, validate)
	coverHandler := handler.NewCoverHandler(coverService, validate)
	audioHandler := handler.NewAudioHandler(store)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, 24)
	authHandler := handler.NewAuthHandler(authMiddleware, accessKey, validate)

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/api/validate-key", authHandler.ValidateKey)

	api := app.Group("/api", authMiddleware.Authenticate())

	api.Post("/analyze", sequenceHandler.Analyze)
	api.Post("/sequence/random", sequenceHandler.Random)
	api.Post("/generate", songHandler.Generate)

	coverGroup := api.Group("/cover")
	coverGroup.Post("/start", coverHandler.Start)
	coverGroup.Get("/status/:jobId", coverHandler.Status)
	coverGroup.Get("/result/:jobId", coverHandler.Result)
	coverGroup.Post("/cancel/:jobId", coverHandler.Cancel)

	api.Get("/audio/:filename", audioHandler.Stream)
	api.Get("/download-file/:filename", audioHandler.Download)

	return &testApp{app: app, store: store}
}

// generateToken creates a session token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	m := middleware.NewAuthMiddleware(testJWTSecret, 24)
	token, err := m.GenerateToken("test-session")
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

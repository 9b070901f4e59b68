package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Access    AccessConfig
	MusicAPI  MusicAPIConfig
	Cover     CoverConfig
	Output    OutputConfig
	R2        R2Config
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	RequestsPerMin int
}

// AccessConfig holds the shared access key exchanged for a JWT.
// Empty means the gate is open (development).
type AccessConfig struct {
	Key string
}

type MusicAPIConfig struct {
	BaseURL        string
	LitterboxURL   string
	FileIOURL      string
	APIKey         string
	ShortTimeout   time.Duration // status checks and small JSON calls
	RequestTimeout time.Duration // uploads and audio downloads
}

// CoverConfig bounds the polling loop for remote cover tasks.
type CoverConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
}

type OutputConfig struct {
	Dir string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("ACCESS_KEY")
	readSecret("MUSICAPI_KEY")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("ratelimit.requests_per_min", "RATELIMIT_PER_MIN")
	_ = viper.BindEnv("access.key", "ACCESS_KEY")
	_ = viper.BindEnv("musicapi.base_url", "MUSICAPI_BASE_URL")
	_ = viper.BindEnv("musicapi.api_key", "MUSICAPI_KEY")
	_ = viper.BindEnv("musicapi.litterbox_url", "LITTERBOX_URL")
	_ = viper.BindEnv("musicapi.fileio_url", "FILEIO_URL")
	_ = viper.BindEnv("musicapi.short_timeout_seconds", "MUSICAPI_SHORT_TIMEOUT")
	_ = viper.BindEnv("musicapi.request_timeout_seconds", "MUSICAPI_REQUEST_TIMEOUT")
	_ = viper.BindEnv("cover.poll_interval_seconds", "COVER_POLL_INTERVAL")
	_ = viper.BindEnv("cover.max_attempts", "COVER_MAX_ATTEMPTS")
	_ = viper.BindEnv("output.dir", "OUTPUT_DIR")
	_ = viper.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = viper.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = viper.BindEnv("r2.public_url", "R2_PUBLIC_URL")

	// Defaults
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.requests_per_min", 30)
	viper.SetDefault("access.key", "")
	viper.SetDefault("musicapi.base_url", "https://api.musicapi.ai/api/v1/sonic")
	viper.SetDefault("musicapi.litterbox_url", "https://litterbox.catbox.moe/resources/internals/api.php")
	viper.SetDefault("musicapi.fileio_url", "https://file.io")
	viper.SetDefault("musicapi.short_timeout_seconds", 60)
	viper.SetDefault("musicapi.request_timeout_seconds", 300)
	viper.SetDefault("cover.poll_interval_seconds", 5)
	viper.SetDefault("cover.max_attempts", 40)
	viper.SetDefault("output.dir", "./output")
	viper.SetDefault("r2.bucket_name", "dna-lifesong")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMin: viper.GetInt("ratelimit.requests_per_min"),
		},
		Access: AccessConfig{
			Key: viper.GetString("access.key"),
		},
		MusicAPI: MusicAPIConfig{
			BaseURL:        viper.GetString("musicapi.base_url"),
			LitterboxURL:   viper.GetString("musicapi.litterbox_url"),
			FileIOURL:      viper.GetString("musicapi.fileio_url"),
			APIKey:         viper.GetString("musicapi.api_key"),
			ShortTimeout:   time.Duration(viper.GetInt("musicapi.short_timeout_seconds")) * time.Second,
			RequestTimeout: time.Duration(viper.GetInt("musicapi.request_timeout_seconds")) * time.Second,
		},
		Cover: CoverConfig{
			PollInterval: time.Duration(viper.GetInt("cover.poll_interval_seconds")) * time.Second,
			MaxAttempts:  viper.GetInt("cover.max_attempts"),
		},
		Output: OutputConfig{
			Dir: viper.GetString("output.dir"),
		},
		R2: R2Config{
			AccountID:       viper.GetString("r2.account_id"),
			AccessKeyID:     viper.GetString("r2.access_key_id"),
			SecretAccessKey: viper.GetString("r2.secret_access_key"),
			BucketName:      viper.GetString("r2.bucket_name"),
			PublicURL:       viper.GetString("r2.public_url"),
		},
	}

	return cfg, nil
}

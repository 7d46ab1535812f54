package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvFileVar names the variable holding the optional dotenv file path.
const EnvFileVar = "GOCATALOG_ENV_FILE"

type Config struct {
	Server    ServerConfig
	Worker    WorkerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	MinIO     MinIOConfig
	Uploads   UploadsConfig
	Thumbnail ThumbnailConfig
	Auth      AuthConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
	MaxUploadBytes  int64         `envconfig:"API_MAX_UPLOAD_BYTES" default:"104857600"`
	SecureCookies   bool          `envconfig:"API_SECURE_COOKIES" default:"false"`
}

type WorkerConfig struct {
	MaxRetries      int           `envconfig:"WORKER_MAX_RETRIES" default:"3"`
	Prefetch        int           `envconfig:"WORKER_PREFETCH" default:"1"`
	ShutdownTimeout time.Duration `envconfig:"WORKER_SHUTDOWN_TIMEOUT" default:"30s"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"gocatalog"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"gocatalog"`
	DBName   string `envconfig:"POSTGRES_DB" default:"gocatalog"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	// AutoMigrate applies pending migrations when the API starts.
	AutoMigrate bool `envconfig:"POSTGRES_AUTO_MIGRATE" default:"true"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type RabbitMQConfig struct {
	// Enabled routes media events through the queue; when false
	// thumbnails are evicted inline and warmed on first request.
	Enabled  bool   `envconfig:"RABBITMQ_ENABLED" default:"true"`
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"gocatalog"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"gocatalog"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
	Queue    string `envconfig:"RABBITMQ_QUEUE" default:"media_events"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

type MinIOConfig struct {
	Enabled      bool   `envconfig:"MINIO_ENABLED" default:"false"`
	Endpoint     string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	PublicURL    string `envconfig:"MINIO_PUBLIC_ENDPOINT" default:""`
	AccessKey    string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey    string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Bucket       string `envconfig:"MINIO_BUCKET" default:"thumbnails"`
	UseSSL       bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	CreateBucket bool   `envconfig:"MINIO_CREATE_BUCKET" default:"true"`
}

type UploadsConfig struct {
	// Root is the directory served under /uploads.
	Root string `envconfig:"UPLOADS_ROOT" default:"./public/uploads"`
}

type ThumbnailConfig struct {
	Timeout       time.Duration `envconfig:"THUMBNAIL_TIMEOUT" default:"30s"`
	LockTTL       time.Duration `envconfig:"THUMBNAIL_LOCK_TTL" default:"45s"`
	FFmpegPath    string        `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	RequireFFmpeg bool          `envconfig:"THUMBNAIL_REQUIRE_FFMPEG" default:"true"`
	// DistributedLock serializes generation across API and worker instances via Redis.
	DistributedLock bool          `envconfig:"THUMBNAIL_DISTRIBUTED_LOCK" default:"true"`
	MirrorURLExpiry time.Duration `envconfig:"THUMBNAIL_MIRROR_URL_EXPIRY" default:"1h"`
}

type AuthConfig struct {
	SessionTTL     time.Duration `envconfig:"AUTH_SESSION_TTL" default:"24h"`
	LoginPerMinute int           `envconfig:"AUTH_LOGIN_PER_MINUTE" default:"10"`
	LoginBurst     int           `envconfig:"AUTH_LOGIN_BURST" default:"5"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// SlogLevel maps the configured level name to a slog.Level.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads an optional dotenv file and then the environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	envFile := os.Getenv(EnvFileVar)
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Uploads.Root == "" {
		return errors.New("UPLOADS_ROOT must not be empty")
	}
	if c.Thumbnail.Timeout <= 0 {
		return errors.New("THUMBNAIL_TIMEOUT must be positive")
	}
	if c.Auth.LoginPerMinute <= 0 || c.Auth.LoginBurst <= 0 {
		return errors.New("AUTH_LOGIN_PER_MINUTE and AUTH_LOGIN_BURST must be positive")
	}
	return nil
}

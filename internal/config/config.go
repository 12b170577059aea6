package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	SMTP       SMTPConfig
	Recognizer RecognizerConfig
	Prospect   ProspectConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

// RecognizerConfig holds the speech-recognition endpoints and transport knobs.
type RecognizerConfig struct {
	StreamURL        string // persistent websocket endpoint
	RestURL          string // request/response fallback endpoint
	APIKey           string
	HandshakeTimeout time.Duration
	StreamChunk      time.Duration // chunk cadence while streaming
	FallbackChunk    time.Duration // buffered chunk size in REST fallback
}

// ProspectConfig holds the coordination tunables. The paragraph thresholds are
// heuristics, not hard limits.
type ProspectConfig struct {
	PollInterval      time.Duration
	ParagraphGap      time.Duration
	ParagraphMaxChars int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "ProspecLive"),
		},
		Recognizer: RecognizerConfig{
			StreamURL:        getEnv("RECOGNIZER_STREAM_URL", "wss://api.deepgram.com/v1/listen?model=nova-2&language=fr&smart_format=true&interim_results=true"),
			RestURL:          getEnv("RECOGNIZER_REST_URL", "https://api.deepgram.com/v1/listen?language=fr"),
			APIKey:           getEnv("RECOGNIZER_API_KEY", ""),
			HandshakeTimeout: getEnvAsDuration("RECOGNIZER_HANDSHAKE_TIMEOUT", 5*time.Second),
			StreamChunk:      getEnvAsDuration("RECOGNIZER_STREAM_CHUNK", 250*time.Millisecond),
			FallbackChunk:    getEnvAsDuration("RECOGNIZER_FALLBACK_CHUNK", 2*time.Second),
		},
		Prospect: ProspectConfig{
			PollInterval:      getEnvAsDuration("INVITATION_POLL_INTERVAL", 2*time.Second),
			ParagraphGap:      getEnvAsDuration("TRANSCRIPT_PARAGRAPH_GAP", 3*time.Second),
			ParagraphMaxChars: getEnvAsInt("TRANSCRIPT_PARAGRAPH_MAX_CHARS", 200),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

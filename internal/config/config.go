// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"orderrelay/internal/logger"
)

// Config is the process-wide configuration, read once at startup and passed
// explicitly to every component constructor. It is never mutated after
// FromEnv returns; components must not reach back into the environment.
type Config struct {
	// BackendURL is the single RPC endpoint of the spreadsheet backend.
	// Left empty when unset: the upstream client reports the missing
	// configuration on first use so the process stays up for health checks.
	BackendURL string

	// SharedSecret keys the HMAC on outbound calls. An empty secret is
	// tolerated locally; calls then fail at the backend's verification.
	SharedSecret string

	// CallTimeout bounds every backend call.
	CallTimeout time.Duration

	ServerHost string
	ServerPort string

	// AllowedOrigin is the CORS origin served to browsers. "*" when unset.
	AllowedOrigin string

	// JournalDBPath, when set, enables the local sqlite order journal.
	JournalDBPath string

	LogLevel string
	LogFile  string
}

// LoadEnv reads a .env file when present. System environment wins otherwise.
func LoadEnv() {
	if err := godotenv.Load(".env"); err != nil {
		logger.LogInfo("No .env file found, using system environment variables")
	} else {
		logger.LogInfo("Loaded environment variables from .env")
	}
}

// FromEnv builds the immutable configuration from the environment.
func FromEnv() Config {
	cfg := Config{
		BackendURL:    os.Getenv("BACKEND_URL"),
		SharedSecret:  os.Getenv("BACKEND_SHARED_SECRET"),
		CallTimeout:   15 * time.Second,
		ServerHost:    envOr("SERVER_HOST", "127.0.0.1"),
		ServerPort:    envOr("SERVER_PORT", "5050"),
		AllowedOrigin: envOr("ALLOWED_ORIGIN", "*"),
		JournalDBPath: os.Getenv("JOURNAL_DB_PATH"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
	}

	if s := os.Getenv("BACKEND_TIMEOUT_SECONDS"); s != "" {
		seconds, err := strconv.Atoi(s)
		if err != nil || seconds <= 0 {
			logger.LogWarn("Invalid BACKEND_TIMEOUT_SECONDS %q, using default %v", s, cfg.CallTimeout)
		} else {
			cfg.CallTimeout = time.Duration(seconds) * time.Second
		}
	}
	return cfg
}

func (c Config) ListenAddr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// LogStartup records which settings are present without echoing secrets.
func (c Config) LogStartup() {
	logger.LogInfo("Starting with backendURL=%t secret=%t timeout=%v journal=%t origin=%s",
		c.BackendURL != "", c.SharedSecret != "", c.CallTimeout, c.JournalDBPath != "", c.AllowedOrigin)
	if c.BackendURL == "" {
		logger.LogWarn("BACKEND_URL is not set; backend calls will fail with not_configured")
	}
	if c.SharedSecret == "" {
		logger.LogWarn("BACKEND_SHARED_SECRET is not set; backend will reject signed calls")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

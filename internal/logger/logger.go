// internal/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the process logger.
type Config struct {
	// Level is the minimum level: debug, info, warn, error. Default info.
	Level string
	// FilePath, when set, duplicates output to an append-only log file.
	FilePath string
}

var (
	mu          sync.Mutex
	log         = zerolog.New(consoleWriter()).With().Timestamp().Logger()
	logFilePath string
)

func consoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}
}

// Setup initializes the logger. Safe to call once at startup; before Setup
// the package falls back to a console-only logger so early code can log.
func Setup(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{consoleWriter()}
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0775); err != nil {
			return fmt.Errorf("creating log directory for %s: %w", cfg.FilePath, err)
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0664)
		if err != nil {
			return fmt.Errorf("opening log file %s: %w", cfg.FilePath, err)
		}
		writers = append(writers, f)
		logFilePath = cfg.FilePath
	}

	log = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()

	LogInfo("Logger initialized (level=%s file=%s)", level, cfg.FilePath)
	return nil
}

func GetLogFilePath() string {
	return logFilePath
}

func LogDebug(message string, v ...interface{}) { log.Debug().Msgf(message, v...) }
func LogInfo(message string, v ...interface{})  { log.Info().Msgf(message, v...) }
func LogWarn(message string, v ...interface{})  { log.Warn().Msgf(message, v...) }
func LogError(message string, v ...interface{}) { log.Error().Msgf(message, v...) }
func LogFatal(message string, v ...interface{}) {
	log.Error().Msgf(message, v...)
	os.Exit(1)
}

func LogHTTPRequest(r *http.Request) {
	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("client_ip", GetClientIP(r)).
		Msg("http request")
}

func LogHTTPCompleted(r *http.Request, status int, duration time.Duration) {
	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Dur("duration", duration).
		Msg("http request completed")
}

func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Global logger instance and synchronization
var (
	logger   *slog.Logger
	loggerMu sync.RWMutex
	isInited bool
)

// LogLevel represents logging verbosity
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Config holds logger configuration
type Config struct {
	Level  LogLevel
	Output io.Writer // nil for stderr
	Format string    // "json" or "text"
}

// Init initializes the global logger with the given configuration.
// This should be called once at application startup; subsequent calls
// return an error to prevent multiple initialization.
func Init(config Config) error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		return fmt.Errorf("logger already initialized")
	}

	writer := config.Output
	if writer == nil {
		writer = os.Stderr
	}

	var level slog.Level
	switch config.Level {
	case LevelDebug:
		level = slog.LevelDebug
	case LevelWarn:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	logger = slog.New(handler)
	isInited = true
	return nil
}

// GetLogger returns the current logger in a thread-safe manner,
// lazily initializing an INFO-level stderr logger if Init was never
// called.
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	if isInited {
		l := logger
		loggerMu.RUnlock()
		return l
	}
	loggerMu.RUnlock()

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if !isInited {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		isInited = true
	}
	return logger
}

// WithStore creates a logger carrying the store's base path, so every
// line from one store instance is attributable.
func WithStore(base string) *slog.Logger {
	return GetLogger().With("store", base)
}

// Debug logs a debug message on the global logger
func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

// Info logs an info message on the global logger
func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

// Warn logs a warning message on the global logger
func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

// Error logs an error message on the global logger
func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

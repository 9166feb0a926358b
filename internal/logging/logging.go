// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "stocksage", "logs", "stocksage.log"),
		MaxSize:    50,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// File writer with rotation
	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithComponent adds a component name to the logger context.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// WithSymbol adds a symbol to the logger context.
func WithSymbol(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("symbol", symbol).Logger()
}

// LogPriceCheck logs a single price observation against its reference.
func LogPriceCheck(logger zerolog.Logger, symbol string, price, reference float64) {
	logger.Debug().
		Str("event", "price_check").
		Str("symbol", symbol).
		Float64("price", price).
		Float64("reference", reference).
		Msg("Price checked")
}

// LogAlertSent logs a delivered movement alert.
func LogAlertSent(logger zerolog.Logger, symbol string, percentChange float64, message string) {
	logger.Info().
		Str("event", "alert_sent").
		Str("symbol", symbol).
		Float64("percent_change", percentChange).
		Str("message", message).
		Msg("Alert sent")
}

// LogAlertSuppressed logs a movement that crossed the threshold but was
// deduplicated by the one-alert-per-day rule.
func LogAlertSuppressed(logger zerolog.Logger, symbol, lastAlertDate string) {
	logger.Info().
		Str("event", "alert_suppressed").
		Str("symbol", symbol).
		Str("last_alert_date", lastAlertDate).
		Msg("Duplicate alert suppressed")
}

// LogCommand logs a handled inbound command.
func LogCommand(logger zerolog.Logger, kind, symbol, reply string) {
	logger.Info().
		Str("event", "command").
		Str("kind", kind).
		Str("symbol", symbol).
		Str("reply", reply).
		Msg("Command handled")
}

// Package logging provides structured diagnostics with zerolog. Output goes
// to stderr so stdout stays free for command results.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // console, json
}

// DefaultConfig returns the configuration used before settings are loaded.
func DefaultConfig() Config {
	return Config{Level: "warn", Format: "console"}
}

// Init configures the global logger to write to os.Stderr.
func Init(cfg Config) {
	InitWriter(cfg, os.Stderr)
}

// InitWriter configures the global logger to write to w.
func InitWriter(cfg Config, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	return log.Logger
}

// WithComponent returns a logger tagged with a component name.
func WithComponent(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Level represents a log level.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// levels maps the string Level a caller configures (from a YAML
// config file or a CLI flag) onto zerolog's own level type. Anything
// not in the table falls back to InfoLevel in parseLevel.
var levels = map[Level]zerolog.Level{
	DebugLevel: zerolog.DebugLevel,
	InfoLevel:  zerolog.InfoLevel,
	WarnLevel:  zerolog.WarnLevel,
	ErrorLevel: zerolog.ErrorLevel,
}

func parseLevel(l Level) zerolog.Level {
	if zl, ok := levels[l]; ok {
		return zl
	}
	return zerolog.InfoLevel
}

// Config holds logging configuration.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

func init() {
	// Sensible default so packages that import log but never call Init
	// (unit tests, for instance) still get readable output.
	Init(Config{Level: InfoLevel})
}

// Init (re)builds the global logger from cfg. Safe to call more than
// once; chainkv's CLI calls it once at startup from flag values, and
// tests may call it again to redirect output.
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	Logger = zerolog.New(newWriter(cfg)).With().Timestamp().Logger()
}

// newWriter picks the console or JSON writer cfg asks for, defaulting
// the destination to stdout when the caller didn't supply one.
func newWriter(cfg Config) io.Writer {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.JSONOutput {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
}

// WithComponent creates a child logger tagged with the layer or
// component that owns it (e.g. "journal", "lru", "badgerdb").
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithNamespace creates a child logger scoped to a namespace.
func WithNamespace(namespace string) zerolog.Logger {
	return Logger.With().Str("namespace", namespace).Logger()
}

// WithRootKey creates a child logger scoped to a root key, rendered as
// hex since root keys are arbitrary byte prefixes.
func WithRootKey(rootKey []byte) zerolog.Logger {
	return Logger.With().Hex("root_key", rootKey).Logger()
}

// WithBackend creates a child logger tagged with the backend kind
// string used in metrics and error reporting.
func WithBackend(backend string) zerolog.Logger {
	return Logger.With().Str("backend", backend).Logger()
}

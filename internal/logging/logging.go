package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Output and format identifiers accepted by Config.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"

	FormatConsole = "console"
	FormatJSON    = "json"

	// DefaultLogFile is used when Output is "file" and no File is configured.
	DefaultLogFile = "shepherd.log"
)

// ErrMissingLogFile is returned when file output is requested without a usable path.
var ErrMissingLogFile = errors.New("log file path is required for file output")

// Config describes how a logger is built.
type Config struct {
	Level  string
	Format string
	Output string
	File   string
	Caller bool
}

type loggerKey struct{}

type traceIDKey struct{}

//nolint:gochecknoglobals // Fallback logger for contexts that carry none.
var (
	fallbackMu     sync.RWMutex
	fallbackLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.InfoLevel).
			With().
			Timestamp().
			Logger()
)

// NewLogger builds a zerolog logger from cfg. The returned closer releases
// the log file when file output is used and is a no-op otherwise.
func NewLogger(cfg Config) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)

	if cfg.Output == OutputFile {
		path := cfg.File
		if path == "" {
			path = filepath.Join(os.TempDir(), DefaultLogFile)
		}
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o750); mkErr != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("create log directory: %w", mkErr)
		}
		f, openErr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if openErr != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", openErr)
		}
		out = f
		closer = f
	}

	if cfg.Format != FormatJSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.Output == OutputFile,
		}
	}

	lctx := zerolog.New(out).Level(lvl).Hook(TraceHook{}).With().Timestamp()
	if cfg.Caller {
		lctx = lctx.Caller()
	}

	return lctx.Logger(), closer, nil
}

// SetFallback replaces the logger returned by FromContext when the context carries none.
func SetFallback(l zerolog.Logger) {
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	fallbackLogger = l
}

// ContextWithLogger returns a copy of ctx that carries l.
func ContextWithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, &l)
}

// FromContext returns the logger attached to ctx, or the fallback logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	fallbackMu.RLock()
	defer fallbackMu.RUnlock()
	l := fallbackLogger
	return &l
}

// ComponentLogger returns the context logger tagged with a component name.
func ComponentLogger(ctx context.Context, component string) *zerolog.Logger {
	l := FromContext(ctx).With().Str("component", component).Logger()
	return &l
}

// ContextWithTraceID returns a copy of ctx carrying traceID.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace ID carried by ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// GetOrGenerateTraceID returns ctx unchanged when it already carries a trace ID,
// otherwise a copy carrying a freshly generated ULID.
func GetOrGenerateTraceID(ctx context.Context) (context.Context, string) {
	if id := TraceIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := ulid.Make().String()
	return ContextWithTraceID(ctx, id), id
}

// TraceHook stamps trace_id onto events logged with a context carrying one.
type TraceHook struct{}

// Run implements zerolog.Hook.
func (TraceHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if id := TraceIDFromContext(e.GetCtx()); id != "" {
		e.Str("trace_id", id)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

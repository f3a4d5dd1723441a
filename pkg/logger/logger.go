// Package logger sets up the process-wide zap logger. Components never
// reach for the global directly; they receive a *zap.SugaredLogger and
// derive a named child from it.
package logger

import (
	"io"
	"os"

	"github.com/chazu/ifcgeom/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported values for Options.Format.
const (
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// Verbosity levels for the CLI flag count.
const (
	VerbosityQuiet  = -1 // --quiet: warnings and errors only
	VerbosityNormal = 0  // progress and summary
	VerbosityDebug  = 1  // -v: per-entity decisions
)

var (
	// Logger is the global instance. It starts as a no-op so library code
	// and tests never dereference nil.
	Logger *zap.SugaredLogger
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Options control Initialize.
type Options struct {
	Format    string    // plain | json
	Verbosity int       // see Verbosity* constants
	Output    io.Writer // defaults to os.Stderr
}

// VerbosityToLevel maps the verbosity flag count to a zap level.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity < VerbosityNormal:
		return zapcore.WarnLevel
	case verbosity == VerbosityNormal:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New builds a logger without touching the global.
func New(opts Options) (*zap.SugaredLogger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := zap.NewAtomicLevelAt(VerbosityToLevel(opts.Verbosity))

	var enc zapcore.Encoder
	switch opts.Format {
	case FormatJSON:
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "time"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	case FormatPlain, "":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	default:
		return nil, errors.Mark(
			errors.Newf("unknown log format %q (want %s or %s)", opts.Format, FormatPlain, FormatJSON),
			errors.ErrInvalidConfig)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(out), level)
	return zap.New(core).Sugar(), nil
}

// Initialize replaces the global logger.
func Initialize(opts Options) error {
	l, err := New(opts)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// Sync flushes buffered entries. Errors from syncing a terminal are
// ignored.
func Sync() {
	_ = Logger.Sync()
}

// Package logging builds the process zap logger.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level ("debug", "info", "warn", "error") and encoding
// ("console" or "json").
type Options struct {
	Level  string
	Format string
}

// New returns a logger writing to w, normally stderr.
func New(w io.Writer, opts Options) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	var enc zapcore.Encoder
	switch opts.Format {
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "", "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	default:
		return nil, fmt.Errorf("log format %q (want console | json)", opts.Format)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(lvl))
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is the structured key/value type accepted by the Logger. It is an
// alias so callers can mix the helpers below with raw zap constructors.
type Field = zap.Field

// Logger is a thin wrapper around zap that provides the three log levels we
// need throughout the codebase.
type Logger interface {
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field helpers, re-exported so packages don't import zap directly.
func String(key, val string) Field          { return zap.String(key, val) }
func Float64(key string, val float64) Field { return zap.Float64(key, val) }
func Int(key string, val int) Field         { return zap.Int(key, val) }
func Int64(key string, val int64) Field     { return zap.Int64(key, val) }
func Bool(key string, val bool) Field       { return zap.Bool(key, val) }
func Err(err error) Field                   { return zap.Error(err) }

// zapLogger implements Logger on a *zap.Logger.
type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, fields...) }

// NewZapLogger creates a production-ready logger (JSON encoding, level INFO).
func NewZapLogger() (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{z: z}, nil
}

// NewNop returns a logger that discards everything. Handy as a default when
// the caller doesn't care about logs.
func NewNop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the structured logging surface used across the pipeline. Every
// entry carries a human message, a stable event tag, and a payload object.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
	Sync() error
}

// Config controls log level and optional rotating file output.
type Config struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type zapLogger struct {
	l *zap.Logger
}

// New builds a zap-backed Logger. With an empty FilePath it logs to stderr;
// otherwise it writes to a size-rotated file via lumberjack.
func New(cfg Config) (Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	var sink zapcore.WriteSyncer
	if strings.TrimSpace(cfg.FilePath) != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    defaultInt(cfg.MaxSizeMB, 20),
			MaxBackups: defaultInt(cfg.MaxBackups, 3),
			MaxAge:     defaultInt(cfg.MaxAgeDays, 14),
			Compress:   true,
		})
	} else {
		sink, _, err = zap.Open("stderr")
		if err != nil {
			return nil, fmt.Errorf("open log sink: %w", err)
		}
	}

	core := zapcore.NewCore(encoder, sink, level)
	return &zapLogger{l: zap.New(core)}, nil
}

func parseLevel(raw string) (zapcore.Level, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.Set(raw); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", raw, err)
	}
	return level, nil
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (z *zapLogger) log(fn func(string, ...zap.Field), msg, event string, fields map[string]any) {
	fn(msg, zap.String("event", event), zap.Any("data", fields))
}

func (z *zapLogger) DebugObj(msg, event string, fields map[string]any) {
	z.log(z.l.Debug, msg, event, fields)
}

func (z *zapLogger) InfoObj(msg, event string, fields map[string]any) {
	z.log(z.l.Info, msg, event, fields)
}

func (z *zapLogger) WarnObj(msg, event string, fields map[string]any) {
	z.log(z.l.Warn, msg, event, fields)
}

func (z *zapLogger) ErrorObj(msg, event string, fields map[string]any) {
	z.log(z.l.Error, msg, event, fields)
}

func (z *zapLogger) Sync() error { return z.l.Sync() }

// NopLogger discards everything. Useful as a default in library code.
type NopLogger struct{}

func (NopLogger) DebugObj(string, string, map[string]any) {}
func (NopLogger) InfoObj(string, string, map[string]any)  {}
func (NopLogger) WarnObj(string, string, map[string]any)  {}
func (NopLogger) ErrorObj(string, string, map[string]any) {}
func (NopLogger) Sync() error                             { return nil }

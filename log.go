package main

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger keeps the printf-style leveled API used across the tool on top of
// a zap sugared logger.
type Logger struct {
	z *zap.SugaredLogger
}

func ParseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func NewLoggerTo(w io.Writer, level string) *Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.CallerKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(ParseLogLevel(level)),
	)
	return &Logger{z: zap.New(core).Sugar()}
}

func NewNopLogger() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

func (l *Logger) Debugf(format string, args ...any) { l.sugar().Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.sugar().Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.sugar().Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.sugar().Errorf(format, args...) }

// With returns a child logger carrying structured key/value pairs.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{z: l.sugar().With(kv...)}
}

func (l *Logger) Sync() {
	_ = l.sugar().Sync()
}

func (l *Logger) sugar() *zap.SugaredLogger {
	if l == nil || l.z == nil {
		return zap.NewNop().Sugar()
	}
	return l.z
}

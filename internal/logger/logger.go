package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	zl *zap.Logger
}

var defaultLogger = mustNew(zapcore.InfoLevel)

func mustNew(level zapcore.Level) *Logger {
	l, err := New(level)
	if err != nil {
		panic(fmt.Sprintf("init logger: %v", err))
	}
	return l
}

func New(level zapcore.Level) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if level == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
	zl, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, err
	}
	return &Logger{zl: zl}, nil
}

func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
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

func SetDefault(l *Logger) {
	if defaultLogger != nil {
		_ = defaultLogger.zl.Sync()
	}
	defaultLogger = l
}

func (l *Logger) Debug(format string, args ...interface{}) { l.zl.Debug(fmt.Sprintf(format, args...)) }
func (l *Logger) Info(format string, args ...interface{})  { l.zl.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warn(format string, args ...interface{})  { l.zl.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Error(format string, args ...interface{}) { l.zl.Error(fmt.Sprintf(format, args...)) }
func (l *Logger) Fatal(format string, args ...interface{}) { l.zl.Fatal(fmt.Sprintf(format, args...)) }
func (l *Logger) Sync()                                    { _ = l.zl.Sync() }

func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.Info(format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.Warn(format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
func Fatal(format string, args ...interface{}) { defaultLogger.Fatal(format, args...) }
func Sync()                                    { defaultLogger.Sync() }

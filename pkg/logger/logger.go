package logger

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger - общий интерфейс логгера приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger создает логгер поверх slog с выводом в stdout.
func NewSlogLogger() *SlogLogger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	})

	return &SlogLogger{log: slog.New(handler)}
}

func levelFromEnv() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *SlogLogger) Debugf(format string, args ...any) {
	s.log.Debug(fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Infof(format string, args ...any) {
	s.log.Info(fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Warnf(format string, args ...any) {
	s.log.Warn(fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Errorf(err error, format string, args ...any) {
	s.log.Error(fmt.Sprintf(format, args...), slog.Any("error", err))
}

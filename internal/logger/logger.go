package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type AppLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) AppLogger
}

type appLogger struct {
	logger *slog.Logger
}

func NewAppLogger(logger *slog.Logger) AppLogger {
	return &appLogger{
		logger: logger,
	}
}

// Configはログ出力先の設定です。
type Config struct {
	FilePath   string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Newは、標準出力とローテーション付きファイルの両方に書き込むロガーを生成します。
// 返されるio.Closerはプロセス終了時に閉じてください。
func New(cfg Config, console io.Writer) (AppLogger, io.Closer) {
	if console == nil {
		console = os.Stdout
	}
	if dir := filepath.Dir(cfg.FilePath); dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    orDefault(cfg.MaxSizeMB, 10),
		MaxBackups: orDefault(cfg.MaxBackups, 3),
		MaxAge:     orDefault(cfg.MaxAgeDays, 28),
	}

	handler := slog.NewTextHandler(io.MultiWriter(console, file), &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	})
	return NewAppLogger(slog.New(handler)), file
}

// NewNopは何も出力しないロガーを返します。
func NewNop() AppLogger {
	return NewAppLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (l *appLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *appLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *appLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *appLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *appLogger) With(args ...any) AppLogger {
	return &appLogger{logger: l.logger.With(args...)}
}

// Package sl содержит вспомогательные атрибуты для log/slog.
package sl

import (
	"log/slog"
	"os"
)

// Err возвращает атрибут "error" с текстом ошибки.
//
//	log.Error("failed to create order", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Setup создаёт логгер для окружения: текстовый для local,
// JSON для dev и prod (prod без debug-сообщений).
func Setup(env string) *slog.Logger {
	switch env {
	case "dev":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

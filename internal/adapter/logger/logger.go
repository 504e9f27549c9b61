package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/sm8ta/users_crud_service/internal/core/ports"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type ctxKey struct{}

// WithRequestID stores the request id so the *Ctx methods can attach it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

type LoggerAdapter struct {
	logger *slog.Logger
}

func NewLoggerAdapter(env string) ports.LoggerPort {
	return newLoggerAdapter(os.Stdout, env)
}

func newLoggerAdapter(w io.Writer, env string) *LoggerAdapter {
	var log *slog.Logger

	switch env {
	case envLocal, envDev:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return &LoggerAdapter{
		logger: log,
	}
}

func (l *LoggerAdapter) Info(msg string, fields map[string]interface{}) {
	if fields == nil {
		l.logger.Info(msg)
		return
	}
	l.logger.Info(msg, slog.Any("fields", fields))
}

func (l *LoggerAdapter) Error(msg string, fields map[string]interface{}) {
	if fields == nil {
		l.logger.Error(msg)
		return
	}
	l.logger.Error(msg, slog.Any("fields", fields))
}

func (l *LoggerAdapter) Debug(msg string, fields map[string]interface{}) {
	if fields == nil {
		l.logger.Debug(msg)
		return
	}
	l.logger.Debug(msg, slog.Any("fields", fields))
}

func (l *LoggerAdapter) Warn(msg string, fields map[string]interface{}) {
	if fields == nil {
		l.logger.Warn(msg)
		return
	}
	l.logger.Warn(msg, slog.Any("fields", fields))
}

func (l *LoggerAdapter) InfoCtx(ctx context.Context, msg string, fields map[string]interface{}) {
	l.logger.InfoContext(ctx, msg, l.attrs(ctx, fields)...)
}

func (l *LoggerAdapter) ErrorCtx(ctx context.Context, msg string, fields map[string]interface{}) {
	l.logger.ErrorContext(ctx, msg, l.attrs(ctx, fields)...)
}

func (l *LoggerAdapter) attrs(ctx context.Context, fields map[string]interface{}) []any {
	var args []any
	if id := RequestIDFromContext(ctx); id != "" {
		args = append(args, slog.String("request_id", id))
	}
	if fields != nil {
		args = append(args, slog.Any("fields", fields))
	}
	return args
}

var _ ports.LoggerPort = (*LoggerAdapter)(nil)

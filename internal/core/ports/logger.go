package ports

import "context"

type LoggerPort interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})

	// Same as above, carrying request scoped attributes from ctx
	InfoCtx(ctx context.Context, msg string, fields map[string]interface{})
	ErrorCtx(ctx context.Context, msg string, fields map[string]interface{})
}

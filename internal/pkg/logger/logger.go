package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var base = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init 设置全局 Logger 的服务名字段，应在进程启动时调用一次。
func Init(serviceName string) {
	base = zerolog.New(os.Stderr).With().Timestamp().Str("service", serviceName).Logger()
}

// Ctx 返回绑定了当前链路 TraceID 的 Logger，让日志可以和 Jaeger 中的链路互查。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := base
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With().Str("trace_id", sc.TraceID().String()).Logger()
	}
	return &l
}

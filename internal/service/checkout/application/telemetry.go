package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mirae/internal/pkg/logger"
	"mirae/internal/service/checkout/port"
)

// TelemetrySidecar 以 fire-and-forget 的方式上报步骤事件。
// 约定：绝不向调用方抛错，绝不拖慢任何状态转移——上报在独立 goroutine 中进行，
// 自带与调用方 context 解耦的超时，所有失败只在内部记日志。
type TelemetrySidecar struct {
	notifier port.Telemetry
	timeout  time.Duration
}

func NewTelemetrySidecar(notifier port.Telemetry, timeout time.Duration) *TelemetrySidecar {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &TelemetrySidecar{notifier: notifier, timeout: timeout}
}

// Report 异步提交一条步骤通知。调用后立即返回，不等待结果。
func (s *TelemetrySidecar) Report(ctx context.Context, step int, action string, details map[string]string) {
	if s == nil || s.notifier == nil {
		return
	}

	// 只带走 Span 上下文信息，不继承调用方的超时和取消：
	// 状态转移完成后上报仍可继续，链路上依然能关联到原始请求。
	spanCtx := trace.SpanContextFromContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Ctx(context.Background()).Error().
					Interface("panic", r).Str("action", action).
					Msg("telemetry sidecar panicked")
			}
		}()

		bgCtx := trace.ContextWithRemoteSpanContext(context.Background(), spanCtx)
		bgCtx, cancel := context.WithTimeout(bgCtx, s.timeout)
		defer cancel()

		event := &port.TelemetryEvent{Step: step, Action: action, Details: details}
		if err := s.notifier.Notify(bgCtx, event); err != nil {
			logger.Ctx(bgCtx).Warn().Err(err).
				Int("step", step).Str("action", action).
				Msg("telemetry notify failed")
		}
	}()
}

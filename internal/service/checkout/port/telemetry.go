package port

import "context"

// TelemetryEvent 是发往运营 Webhook 的步骤通知。
type TelemetryEvent struct {
	Step    int               `json:"step"`
	Action  string            `json:"action"`
	Details map[string]string `json:"details"`
}

// Telemetry 是运营可见性 Webhook 的出站端口。
// 它对结账流程的正确性没有任何权威：整体移除也不改变其他组件的行为。
type Telemetry interface {
	Notify(ctx context.Context, event *TelemetryEvent) error
}

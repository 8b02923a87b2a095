package adapter

import (
	"context"

	"mirae/internal/pkg/httpclient"
	"mirae/internal/service/checkout/port"
)

// TelemetryHTTPAdapter 实现了 port.Telemetry，把步骤通知 POST 到运营 Webhook。
// 响应内容不参与任何判断，调用方只关心是否送达。
type TelemetryHTTPAdapter struct {
	client     *httpclient.Client
	webhookURL string
}

func NewTelemetryHTTPAdapter(client *httpclient.Client, webhookURL string) *TelemetryHTTPAdapter {
	return &TelemetryHTTPAdapter{client: client, webhookURL: webhookURL}
}

func (a *TelemetryHTTPAdapter) Notify(ctx context.Context, event *port.TelemetryEvent) error {
	return a.client.PostJSON(ctx, a.webhookURL, event, nil)
}

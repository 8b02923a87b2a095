package adapter

import (
	"context"

	pkgerrors "github.com/pkg/errors"

	"mirae/internal/pkg/httpclient"
	"mirae/internal/service/checkout/port"
)

// PaymentHTTPAdapter 实现了 port.PaymentGateway。
// 网关是托管收银台模式：下单成功后用户整页跳转到返回的 URL，控制权离开本系统。
type PaymentHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewPaymentHTTPAdapter(client *httpclient.Client, baseURL string) *PaymentHTTPAdapter {
	return &PaymentHTTPAdapter{client: client, baseURL: baseURL}
}

type checkoutSessionPayload struct {
	Amount        int64             `json:"amount"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	ProductName   string            `json:"productName"`
	Metadata      map[string]string `json:"metadata"`
}

type checkoutSessionResult struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

func (a *PaymentHTTPAdapter) CreateCheckoutSession(ctx context.Context, req *port.CheckoutSessionRequest) (*port.CheckoutSession, error) {
	payload := &checkoutSessionPayload{
		Amount:        req.Amount,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		ProductName:   req.ProductName,
		Metadata:      req.Metadata,
	}

	var result checkoutSessionResult
	if err := a.client.PostJSON(ctx, a.baseURL+"/v1/checkout/sessions", payload, &result); err != nil {
		return nil, pkgerrors.Wrap(err, "payment gateway request failed")
	}

	// 网关也可能在 200 响应里携带业务错误
	if result.Error != "" {
		return nil, pkgerrors.Errorf("payment gateway rejected session: %s", result.Error)
	}
	if result.URL == "" {
		return nil, pkgerrors.New("payment gateway returned empty session url")
	}

	return &port.CheckoutSession{URL: result.URL}, nil
}

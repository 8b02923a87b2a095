package port

import "context"

// CheckoutSessionRequest 是托管收银台的下单参数。
// 网关不理解订单草稿的结构，所有附加信息都摊平成字符串元数据。
type CheckoutSessionRequest struct {
	Amount        int64
	CustomerName  string
	CustomerEmail string
	ProductName   string
	Metadata      map[string]string
}

// CheckoutSession 是网关签发的托管支付会话，用户将整页跳转到 URL。
type CheckoutSession struct {
	URL string
}

// PaymentGateway 是卡支付网关的出站端口。
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)
}

package port

import (
	"context"

	"mirae/internal/service/checkout/domain"
)

// Mailer 是确认邮件的出站端口。调用方以尽力而为的方式使用它：
// 发送失败只记日志，不影响任何用户可见状态。
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order *domain.Order) error
}

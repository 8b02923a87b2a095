package port

import (
	"context"
	"time"
)

// ReservationStore 记录银行转账的限时预留窗口，TTL 与倒计时同步。
// 预留只是提示性的：写入失败不阻塞支付分支，到期也不会自动取消订单。
type ReservationStore interface {
	Reserve(ctx context.Context, orderID string, ttl time.Duration) error
	Release(ctx context.Context, orderID string) error
}

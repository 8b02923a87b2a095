package adapter

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"mirae/internal/pkg/redis"
)

// ReservationRedisAdapter 实现了 port.ReservationStore。
// 银行转账确认后写入一个 TTL 与倒计时一致的 key，
// 运营侧可以据此看到哪些订单还在转账窗口内。key 过期即窗口关闭，
// 不触发任何订单状态变更。
type ReservationRedisAdapter struct {
	redisClient *redis.Client
}

func NewReservationRedisAdapter(redisClient *redis.Client) *ReservationRedisAdapter {
	return &ReservationRedisAdapter{redisClient: redisClient}
}

func reservationKey(orderID string) string {
	return fmt.Sprintf("checkout:reservation:{%s}", orderID)
}

func (a *ReservationRedisAdapter) Reserve(ctx context.Context, orderID string, ttl time.Duration) error {
	err := a.redisClient.GetClient().Set(ctx, reservationKey(orderID), time.Now().Unix(), ttl).Err()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to write reservation key")
	}
	return nil
}

func (a *ReservationRedisAdapter) Release(ctx context.Context, orderID string) error {
	err := a.redisClient.GetClient().Del(ctx, reservationKey(orderID)).Err()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to delete reservation key")
	}
	return nil
}

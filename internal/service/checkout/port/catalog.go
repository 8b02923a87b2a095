package port

import (
	"context"

	"mirae/internal/service/checkout/domain"
)

// CatalogStore 是商品目录的出站端口，会话打开时一次性读取。
type CatalogStore interface {
	ActivePlans(ctx context.Context) ([]domain.Plan, error)
	Artists(ctx context.Context) ([]domain.Artist, error)

	// ActivePromotion 返回当前生效的折扣活动，没有时返回 nil。
	ActivePromotion(ctx context.Context) (*domain.Promotion, error)

	CustomModelSettings(ctx context.Context) (domain.CustomModelOffer, error)
}

package adapter

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"mirae/internal/service/checkout/domain"
	"mirae/internal/service/checkout/infrastructure"
)

// CatalogGormAdapter 实现了 port.CatalogStore，目录数据直接来自 MySQL。
type CatalogGormAdapter struct {
	db *gorm.DB
}

func NewCatalogGormAdapter(db *gorm.DB) *CatalogGormAdapter {
	return &CatalogGormAdapter{db: db}
}

func (a *CatalogGormAdapter) ActivePlans(ctx context.Context) ([]domain.Plan, error) {
	var models []*infrastructure.PlanModel
	if err := a.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order asc").
		Find(&models).Error; err != nil {
		return nil, err
	}

	plans := make([]domain.Plan, len(models))
	for i, m := range models {
		plans[i] = infrastructure.ToDomainPlan(m)
	}
	return plans, nil
}

func (a *CatalogGormAdapter) Artists(ctx context.Context) ([]domain.Artist, error) {
	var models []*infrastructure.ArtistModel
	if err := a.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order asc").
		Find(&models).Error; err != nil {
		return nil, err
	}

	artists := make([]domain.Artist, len(models))
	for i, m := range models {
		artists[i] = infrastructure.ToDomainArtist(m)
	}
	return artists, nil
}

// ActivePromotion 返回当前生效的活动，没有生效行时返回 nil 而不是错误。
func (a *CatalogGormAdapter) ActivePromotion(ctx context.Context) (*domain.Promotion, error) {
	var model infrastructure.PromotionModel
	err := a.db.WithContext(ctx).
		Where("active = ? AND starts_at <= NOW() AND ends_at >= NOW()", true).
		Order("updated_at desc").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return infrastructure.ToDomainPromotion(&model), nil
}

func (a *CatalogGormAdapter) CustomModelSettings(ctx context.Context) (domain.CustomModelOffer, error) {
	var model infrastructure.CustomModelSettingModel
	err := a.db.WithContext(ctx).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 未配置时给一个不可购买的空报价，第一步仍可选择"无模特"
			return domain.CustomModelOffer{}, nil
		}
		return domain.CustomModelOffer{}, err
	}
	return infrastructure.ToDomainCustomOffer(&model), nil
}

package infrastructure

import (
	"mirae/internal/service/checkout/domain"
)

// --- 数据库模型与领域模型的转换函数 ---

func toOrderModel(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		Company:       o.Company,
		Email:         o.Email,
		Phone:         o.Phone,
		Message:       o.Message,
		PlanID:        o.PlanID,
		PlanTitle:     o.PlanTitle,
		PlanPrice:     o.PlanPrice,
		ModelSummary:  o.ModelSummary,
		AddOnPrice:    o.AddOnPrice,
		Platforms:     o.Platforms,
		Budget:        o.Budget,
		Audience:      o.Audience,
		Region:        o.Region,
		PromoRate:     o.PromoRate,
		TotalAmount:   o.TotalAmount,
		ProductName:   o.ProductName,
		PaymentMethod: string(o.PaymentMethod),
		State:         string(o.State),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toDomainOrder(m *OrderModel) *domain.Order {
	return &domain.Order{
		ID:            m.ID,
		CustomerName:  m.CustomerName,
		Company:       m.Company,
		Email:         m.Email,
		Phone:         m.Phone,
		Message:       m.Message,
		PlanID:        m.PlanID,
		PlanTitle:     m.PlanTitle,
		PlanPrice:     m.PlanPrice,
		ModelSummary:  m.ModelSummary,
		AddOnPrice:    m.AddOnPrice,
		Platforms:     m.Platforms,
		Budget:        m.Budget,
		Audience:      m.Audience,
		Region:        m.Region,
		PromoRate:     m.PromoRate,
		TotalAmount:   m.TotalAmount,
		ProductName:   m.ProductName,
		PaymentMethod: domain.PaymentMethod(m.PaymentMethod),
		State:         domain.OrderState(m.State),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ToDomainPlan(m *PlanModel) domain.Plan {
	return domain.Plan{
		ID:       m.ID,
		Title:    m.Title,
		Subtitle: m.Subtitle,
		Price:    m.Price,
		Active:   m.Active,
		Featured: m.Featured,
		Badge:    m.Badge,
	}
}

func ToDomainArtist(m *ArtistModel) domain.Artist {
	return domain.Artist{
		ID:         m.ID,
		Name:       m.Name,
		AddOnPrice: m.AddOnPrice,
	}
}

func ToDomainPromotion(m *PromotionModel) *domain.Promotion {
	return &domain.Promotion{
		Rate:  m.Rate,
		Badge: m.Badge,
	}
}

func ToDomainCustomOffer(m *CustomModelSettingModel) domain.CustomModelOffer {
	return domain.CustomModelOffer{
		Title:       m.Title,
		Price:       m.Price,
		Description: m.Description,
	}
}

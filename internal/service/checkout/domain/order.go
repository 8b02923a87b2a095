package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// OrderState 定义了订单记录的生命周期状态。
type OrderState string

const (
	StateDraft            OrderState = "DRAFT"             // 3→4 落库的草稿态
	StateAwaitingTransfer OrderState = "AWAITING_TRANSFER" // 已选银行转账，等待打款
	StateCardRedirected   OrderState = "CARD_REDIRECTED"   // 已跳转到托管收银台
	StatePaid             OrderState = "PAID"
	StateCancelled        OrderState = "CANCELLED"
)

// Order 是持久化的订单聚合根。草稿在 3→4 时第一次落库，
// 终端支付处理器用同一个 ID 再次落库，所以 Save 必须幂等。
type Order struct {
	ID string

	CustomerName string
	Company      string
	Email        string
	Phone        string
	Message      string

	PlanID    string
	PlanTitle string
	PlanPrice int64

	ModelSummary string
	AddOnPrice   int64

	Platforms string // 逗号拼接的平台标签，纯描述性文本
	Budget    string
	Audience  string
	Region    string

	PromoRate   int
	TotalAmount int64
	ProductName string

	PaymentMethod PaymentMethod
	State         OrderState

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder 用草稿和当时的定价快照构造订单实体。
func NewOrder(id string, draft *OrderDraft, promo *Promotion) (*Order, error) {
	if id == "" || draft.Plan == nil || draft.Contact.Name == "" || draft.Contact.Email == "" {
		return nil, errors.New("cannot create order with empty required fields")
	}

	now := time.Now()
	return &Order{
		ID:            id,
		CustomerName:  draft.Contact.Name,
		Company:       draft.Contact.Company,
		Email:         draft.Contact.Email,
		Phone:         draft.Contact.Phone,
		Message:       draft.Contact.Message,
		PlanID:        draft.Plan.ID,
		PlanTitle:     draft.Plan.Title,
		PlanPrice:     draft.Plan.Price,
		ModelSummary:  draft.ModelSelection.DisplayName(),
		AddOnPrice:    draft.ModelSelection.AddOnPrice(),
		Platforms:     strings.Join(draft.MediaBrief.Platforms, ","),
		Budget:        draft.MediaBrief.Budget,
		Audience:      draft.MediaBrief.Audience,
		Region:        draft.MediaBrief.Region,
		PromoRate:     promoRate(promo),
		TotalAmount:   ComputeTotal(draft.Plan, draft.ModelSelection, promo),
		ProductName:   ProductLabel(draft.Plan, draft.ModelSelection),
		PaymentMethod: PaymentUnset,
		State:         StateDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func promoRate(promo *Promotion) int {
	if promo == nil {
		return 0
	}
	return promo.Rate
}

// MarkAwaitingTransfer 在银行转账分支落定时调用。
func (o *Order) MarkAwaitingTransfer() {
	o.PaymentMethod = PaymentBank
	o.State = StateAwaitingTransfer
	o.UpdatedAt = time.Now()
}

// MarkCardRedirected 在拿到托管收银台地址后调用。
func (o *Order) MarkCardRedirected() {
	o.PaymentMethod = PaymentCard
	o.State = StateCardRedirected
	o.UpdatedAt = time.Now()
}

// MarkPaid 由后续的支付回调驱动。
func (o *Order) MarkPaid() error {
	if o.State != StateAwaitingTransfer && o.State != StateCardRedirected {
		return errors.New("order is not awaiting payment")
	}
	o.State = StatePaid
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel 取消订单。倒计时到期不会走到这里——过期只是提示性的。
func (o *Order) Cancel() error {
	if o.State == StatePaid {
		return errors.New("paid orders cannot be cancelled")
	}
	o.State = StateCancelled
	o.UpdatedAt = time.Now()
	return nil
}

// OrderRepository 是订单持久化的出站端口。
type OrderRepository interface {
	// Save 以订单 ID 为键幂等写入：已存在则更新，不产生重复行。
	Save(ctx context.Context, order *Order) error

	FindByID(ctx context.Context, id string) (*Order, error)
}

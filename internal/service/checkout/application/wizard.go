package application

import (
	"strconv"
	"sync"
	"time"

	"mirae/internal/service/checkout/domain"
)

// WizardSession 是一次结账向导的全部服务端状态。
// 草稿由会话独占持有并逐步累积，关闭会话即整体丢弃。
// 所有字段都在持有 mu 的情况下读写；长耗时 I/O 不允许在持锁期间进行。
type WizardSession struct {
	mu sync.Mutex

	ID      string
	Step    domain.Step
	Phase   domain.PaymentPhase
	Draft   *domain.OrderDraft
	Catalog *domain.CatalogSnapshot

	// OrderID 在 3→4 落库成功后固定下来，终端处理器复用同一个 ID
	OrderID string

	Countdown *domain.Countdown

	// cardInFlight 在卡支付网关调用期间为 true，期间禁止其他转移
	cardInFlight bool

	CreatedAt time.Time
}

func newWizardSession(id string, catalog *domain.CatalogSnapshot) *WizardSession {
	return &WizardSession{
		ID:        id,
		Step:      domain.StepPlanModel,
		Phase:     domain.PhaseNone,
		Draft:     domain.NewDraft(),
		Catalog:   catalog,
		Countdown: domain.NewCountdown(),
		CreatedAt: time.Now(),
	}
}

// total 计算当前草稿的应付总价，未选套餐时为 0。调用方需持锁。
func (s *WizardSession) total() int64 {
	return domain.ComputeTotal(s.Draft.Plan, s.Draft.ModelSelection, s.Catalog.Promotion)
}

// resetPaymentState 清掉第四步的全部瞬时状态：计时器、已选方式、进行中标记。
// 后退离开第四步和关闭会话都会走到这里。调用方需持锁。
func (s *WizardSession) resetPaymentState() {
	s.Countdown.Stop()
	s.Draft.PaymentMethod = domain.PaymentUnset
	s.cardInFlight = false
	if s.Step == domain.StepPayment {
		s.Phase = domain.PhaseSelecting
	}
}

// view 生成对外状态快照。调用方需持锁。
func (s *WizardSession) view(withCatalog bool) *SessionView {
	v := &SessionView{
		SessionID:    s.ID,
		Step:         s.Step.String(),
		PaymentPhase: string(s.Phase),
		Method:       string(s.Draft.PaymentMethod),
		ModelSummary: s.Draft.ModelSelection.DisplayName(),
		ProductName:  domain.ProductLabel(s.Draft.Plan, s.Draft.ModelSelection),
		Total:        s.total(),
	}
	if s.Draft.Plan != nil {
		v.PlanID = s.Draft.Plan.ID
	}
	if withCatalog {
		v.Catalog = newCatalogView(s.Catalog)
	}
	if s.Step == domain.StepPayment && s.Draft.PaymentMethod == domain.PaymentBank {
		v.Countdown = newCountdownView(s.Countdown.Snapshot())
	}
	if s.Draft.Contact.Name != "" || s.Draft.Contact.Email != "" {
		v.Contact = &ContactStepRequest{
			Name:    s.Draft.Contact.Name,
			Company: s.Draft.Contact.Company,
			Email:   s.Draft.Contact.Email,
			Phone:   s.Draft.Contact.Phone,
			Message: s.Draft.Contact.Message,
		}
	}
	if len(s.Draft.MediaBrief.Platforms) > 0 || s.Draft.MediaBrief.Budget != "" ||
		s.Draft.MediaBrief.Audience != "" || s.Draft.MediaBrief.Region != "" {
		v.MediaBrief = &MediaStepRequest{
			Platforms: s.Draft.MediaBrief.Platforms,
			Budget:    s.Draft.MediaBrief.Budget,
			Audience:  s.Draft.MediaBrief.Audience,
			Region:    s.Draft.MediaBrief.Region,
		}
	}
	return v
}

// telemetryDetails 汇总第一步事件携带的明细。调用方需持锁。
func (s *WizardSession) planTelemetryDetails() map[string]string {
	details := map[string]string{
		"plan":  s.Draft.Plan.Title,
		"price": strconv.FormatInt(s.Draft.Plan.Price, 10),
		"total": strconv.FormatInt(s.total(), 10),
	}
	switch s.Draft.ModelSelection.Kind {
	case domain.ModelArtist:
		details["model"] = s.Draft.ModelSelection.Artist.Name
	case domain.ModelCustom:
		details["model"] = s.Draft.ModelSelection.Custom.Title
	default:
		details["model"] = "none"
	}
	return details
}

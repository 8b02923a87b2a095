package application

import (
	"mirae/internal/service/checkout/domain"
)

// --- 请求 DTO ---

// PlanStepRequest 是第一步的提交内容。
// ModelType 取 none / artist / custom 三者之一。
type PlanStepRequest struct {
	PlanID    string `json:"planId"`
	ModelType string `json:"modelType"`
	ArtistID  string `json:"artistId,omitempty"`
}

// MediaStepRequest 是第二步的提交内容，全部可选。
type MediaStepRequest struct {
	Platforms []string `json:"platforms"`
	Budget    string   `json:"budget"`
	Audience  string   `json:"audience"`
	Region    string   `json:"region"`
}

// ContactStepRequest 是第三步的提交内容。
type ContactStepRequest struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message,omitempty"`
}

// PaymentRequest 是第四步的支付方式选择。
type PaymentRequest struct {
	Method string `json:"method"`
}

// --- 响应 DTO ---

type PlanView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Price    int64  `json:"price"`
	Featured bool   `json:"featured"`
	Badge    string `json:"badge,omitempty"`
}

type ArtistView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AddOnPrice int64  `json:"addOnPrice"`
}

type PromotionView struct {
	Rate  int    `json:"rate"`
	Badge string `json:"badge,omitempty"`
}

type CustomModelView struct {
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	Description string `json:"description,omitempty"`
}

// CatalogView 是会话打开时返回给前端的目录快照。
type CatalogView struct {
	Plans       []PlanView      `json:"plans"`
	Artists     []ArtistView    `json:"artists"`
	Promotion   *PromotionView  `json:"promotion,omitempty"`
	CustomModel CustomModelView `json:"customModel"`
}

// SessionView 是向导的对外状态：当前步骤、已累积的选择和实时总价。
type SessionView struct {
	SessionID    string               `json:"sessionId"`
	Step         string               `json:"step"`
	PaymentPhase string               `json:"paymentPhase,omitempty"`
	Method       string               `json:"method,omitempty"`
	PlanID       string               `json:"planId,omitempty"`
	ModelSummary string               `json:"modelSummary,omitempty"`
	ProductName  string               `json:"productName,omitempty"`
	Total        int64                `json:"total"`
	Catalog      *CatalogView         `json:"catalog,omitempty"`
	Countdown    *CountdownView       `json:"countdown,omitempty"`
	Contact      *ContactStepRequest  `json:"contact,omitempty"`
	MediaBrief   *MediaStepRequest    `json:"mediaBrief,omitempty"`
}

// CountdownView 是倒计时的展示态，Urgent 的阈值判断在这里完成。
type CountdownView struct {
	Remaining int    `json:"remaining"`
	Display   string `json:"display"`
	Active    bool   `json:"active"`
	Urgent    bool   `json:"urgent"`
}

// PaymentResult 是终端支付处理器的返回：银行转账带倒计时，卡支付带跳转地址。
type PaymentResult struct {
	Method      string         `json:"method"`
	OrderID     string         `json:"orderId"`
	RedirectURL string         `json:"redirectUrl,omitempty"`
	Countdown   *CountdownView `json:"countdown,omitempty"`
}

func newCountdownView(snap domain.CountdownSnapshot) *CountdownView {
	return &CountdownView{
		Remaining: snap.Remaining,
		Display:   domain.FormatMMSS(snap.Remaining),
		Active:    snap.Active,
		Urgent:    snap.Active && snap.Remaining <= domain.UrgentThresholdSeconds,
	}
}

func newCatalogView(snapshot *domain.CatalogSnapshot) *CatalogView {
	view := &CatalogView{
		Plans:   make([]PlanView, len(snapshot.Plans)),
		Artists: make([]ArtistView, len(snapshot.Artists)),
		CustomModel: CustomModelView{
			Title:       snapshot.CustomModel.Title,
			Price:       snapshot.CustomModel.Price,
			Description: snapshot.CustomModel.Description,
		},
	}
	for i, p := range snapshot.Plans {
		view.Plans[i] = PlanView{
			ID:       p.ID,
			Title:    p.Title,
			Subtitle: p.Subtitle,
			Price:    p.Price,
			Featured: p.Featured,
			Badge:    p.Badge,
		}
	}
	for i, a := range snapshot.Artists {
		view.Artists[i] = ArtistView{ID: a.ID, Name: a.Name, AddOnPrice: a.AddOnPrice}
	}
	if snapshot.Promotion != nil {
		view.Promotion = &PromotionView{Rate: snapshot.Promotion.Rate, Badge: snapshot.Promotion.Badge}
	}
	return view
}

package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"mirae/internal/pkg/bootstrap"
	"mirae/internal/service/checkout/application"
	"mirae/internal/service/checkout/domain"
)

// CheckoutHandler 封装了结账向导的 HTTP 处理器。
type CheckoutHandler struct {
	service *application.CheckoutService
}

// NewCheckoutHandler 创建一个新的 HTTP 处理器实例
func NewCheckoutHandler(service *application.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *CheckoutHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /checkout/sessions", h.handleOpenSession)
	mux.HandleFunc("GET /checkout/sessions/{id}", h.handleGetSession)
	mux.HandleFunc("POST /checkout/sessions/{id}/plan", h.handlePlanStep)
	mux.HandleFunc("POST /checkout/sessions/{id}/media", h.handleMediaStep)
	mux.HandleFunc("POST /checkout/sessions/{id}/contact", h.handleContactStep)
	mux.HandleFunc("POST /checkout/sessions/{id}/payment", h.handlePayment)
	mux.HandleFunc("POST /checkout/sessions/{id}/back", h.handleBack)
	mux.HandleFunc("DELETE /checkout/sessions/{id}", h.handleClose)
}

func (h *CheckoutHandler) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	view, err := h.service.OpenSession(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *CheckoutHandler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	view, err := h.service.GetSession(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CheckoutHandler) handlePlanStep(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	var req application.PlanStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := h.service.SubmitPlanStep(ctx, r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	stepTransitions.WithLabelValues(view.Step).Inc()
	writeJSON(w, http.StatusOK, view)
}

func (h *CheckoutHandler) handleMediaStep(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	var req application.MediaStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := h.service.SubmitMediaStep(ctx, r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	stepTransitions.WithLabelValues(view.Step).Inc()
	writeJSON(w, http.StatusOK, view)
}

func (h *CheckoutHandler) handleContactStep(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	var req application.ContactStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := h.service.SubmitContactStep(ctx, r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	stepTransitions.WithLabelValues(view.Step).Inc()
	writeJSON(w, http.StatusOK, view)
}

// handlePayment 是第四步的终端入口。银行转账的响应里附上收款账户信息，
// 卡支付返回托管收银台地址，由前端执行整页跳转。
func (h *CheckoutHandler) handlePayment(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	var req application.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.SelectPayment(ctx, r.PathValue("id"), &req)
	if err != nil {
		if errors.Is(err, domain.ErrGatewayUnavailable) || errors.Is(err, domain.ErrInvalidAmount) {
			gatewayFailures.Inc()
		}
		writeError(w, err)
		return
	}
	ordersResolved.WithLabelValues(result.Method).Inc()

	resp := paymentResponse{PaymentResult: result}
	if result.Method == string(domain.PaymentBank) {
		account := bootstrap.GetCurrentConfig().App.BankAccount
		resp.BankAccount = &bankAccountView{
			BankName: account.BankName,
			Number:   account.Number,
			Holder:   account.Holder,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CheckoutHandler) handleBack(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	view, err := h.service.Back(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CheckoutHandler) handleClose(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	if err := h.service.Close(ctx, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bankAccountView struct {
	BankName string `json:"bankName"`
	Number   string `json:"number"`
	Holder   string `json:"holder"`
}

type paymentResponse struct {
	*application.PaymentResult
	BankAccount *bankAccountView `json:"bankAccount,omitempty"`
}

func extractTraceContext(r *http.Request) context.Context {
	propagator := otel.GetTextMapPropagator()
	return propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

// writeError 根据错误类型返回不同的 HTTP 状态码。
func writeError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrStepLocked),
		errors.Is(err, domain.ErrUnknownPlan),
		errors.Is(err, domain.ErrUnknownArtist),
		errors.Is(err, domain.ErrUnknownPaymentMethod):
		statusCode = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidTransition):
		statusCode = http.StatusConflict
	case errors.Is(err, domain.ErrOrderNotPersisted):
		// 关键路径落库失败：可重试，数据原样保留
		statusCode = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrGatewayUnavailable),
		errors.Is(err, domain.ErrInvalidAmount):
		statusCode = http.StatusBadGateway
	default:
		statusCode = http.StatusInternalServerError
	}

	body := errorResponse{Error: err.Error(), Retryable: statusCode == http.StatusServiceUnavailable}
	if errors.Is(err, domain.ErrGatewayUnavailable) || errors.Is(err, domain.ErrInvalidAmount) {
		// 系统中唯一的自动兜底建议：卡支付失败推荐改走银行转账
		body.Recommendation = "card payment is unavailable right now, please try bank transfer"
	}
	writeJSON(w, statusCode, body)
}

type errorResponse struct {
	Error          string `json:"error"`
	Retryable      bool   `json:"retryable,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

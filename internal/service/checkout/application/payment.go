package application

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mirae/internal/pkg/logger"
	"mirae/internal/service/checkout/domain"
	"mirae/internal/service/checkout/port"
)

// SelectPayment 是第四步的终端分支：每次结账只会落定一种支付方式。
// 两个处理器各自拥有不同的副作用和失败语义。
func (s *CheckoutService) SelectPayment(ctx context.Context, sessionID string, req *PaymentRequest) (*PaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.SelectPayment")
	defer span.End()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("checkout.session_id", sessionID),
		attribute.String("payment.method", req.Method),
	)

	switch domain.PaymentMethod(req.Method) {
	case domain.PaymentBank:
		return s.handleBankTransfer(ctx, sess)
	case domain.PaymentCard:
		return s.handleCardPayment(ctx, sess)
	default:
		return nil, domain.ErrUnknownPaymentMethod
	}
}

// handleBankTransfer 处理银行转账分支。
// 确认页（收款账户 + 倒计时）的展示只取决于本地状态：
// 订单更新、预留 key 和确认邮件都是尽力而为，失败一律只记日志。
func (s *CheckoutService) handleBankTransfer(ctx context.Context, sess *WizardSession) (*PaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.BankTransfer")
	defer span.End()

	sess.mu.Lock()
	if sess.Step != domain.StepPayment || sess.Phase != domain.PhaseSelecting || sess.cardInFlight {
		sess.mu.Unlock()
		return nil, domain.ErrInvalidTransition
	}

	// 1. 立即落定支付方式并启动倒计时，用户马上看到确认页
	sess.Draft.PaymentMethod = domain.PaymentBank
	sess.Phase = domain.PhaseResolved
	sess.Countdown.Start(s.countdownSeconds)

	order, err := domain.NewOrder(sess.OrderID, sess.Draft, sess.Catalog.Promotion)
	orderID := sess.OrderID
	snap := sess.Countdown.Snapshot()
	details := map[string]string{
		"name":  sess.Draft.Contact.Name,
		"email": sess.Draft.Contact.Email,
		"total": strconv.FormatInt(sess.total(), 10),
	}
	sess.mu.Unlock()

	if err != nil {
		// 走到第四步时草稿必然完整，这里只是防御
		span.RecordError(err)
		return nil, err
	}
	order.MarkAwaitingTransfer()

	// 2. 幂等落库：3→4 已经写过同一个 ID，这里更新而不是新建。
	//    失败不影响确认页，后台可根据日志补偿。
	if err := s.orders.Save(ctx, order); err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).Str("order", orderID).
			Msg("failed to mark order as awaiting transfer")
	} else {
		span.AddEvent("Order marked as awaiting transfer.")
	}

	// 3. 预留窗口与倒计时同步，纯提示性
	if s.reservations != nil {
		ttl := time.Duration(s.countdownSeconds) * time.Second
		if err := s.reservations.Reserve(ctx, orderID, ttl); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("order", orderID).Msg("failed to write reservation")
		}
	}

	// 4. 确认邮件 fire-and-forget：发送结果不影响已展示的成功状态
	s.sendConfirmationAsync(ctx, order)

	// 5. 遥测只带客户身份和金额，不带任何资金信息
	s.telemetry.Report(ctx, 4, "bank transfer selected", details)

	logger.Ctx(ctx).Info().Str("order", orderID).Msg("bank transfer selected, countdown started")
	return &PaymentResult{
		Method:    string(domain.PaymentBank),
		OrderID:   orderID,
		Countdown: newCountdownView(snap),
	}, nil
}

// handleCardPayment 处理卡支付分支：请求托管收银台并整页跳转。
// 任何失败（金额校验、网络、网关业务错误）都会把会话恢复到支付方式
// 未选择的状态，并建议用户改用银行转账——卡支付失败绝不让用户卡死。
func (s *CheckoutService) handleCardPayment(ctx context.Context, sess *WizardSession) (*PaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.CardPayment")
	defer span.End()

	sess.mu.Lock()
	if sess.Step != domain.StepPayment || sess.Phase != domain.PhaseSelecting || sess.cardInFlight {
		sess.mu.Unlock()
		return nil, domain.ErrInvalidTransition
	}

	// 1. 金额必须为正，否则不碰网关直接失败
	total := sess.total()
	if total <= 0 {
		sess.mu.Unlock()
		span.SetStatus(codes.Error, "non-positive total reached card handler")
		return nil, domain.ErrInvalidAmount
	}

	sess.Draft.PaymentMethod = domain.PaymentCard
	sess.Phase = domain.PhaseResolved
	sess.cardInFlight = true

	gatewayReq := &port.CheckoutSessionRequest{
		Amount:        total,
		CustomerName:  sess.Draft.Contact.Name,
		CustomerEmail: sess.Draft.Contact.Email,
		ProductName:   domain.ProductLabel(sess.Draft.Plan, sess.Draft.ModelSelection),
		Metadata:      cardMetadata(sess.Draft),
	}
	order, orderErr := domain.NewOrder(sess.OrderID, sess.Draft, sess.Catalog.Promotion)
	orderID := sess.OrderID
	details := map[string]string{
		"name":  sess.Draft.Contact.Name,
		"email": sess.Draft.Contact.Email,
		"total": strconv.FormatInt(total, 10),
	}
	sess.mu.Unlock()

	if orderErr != nil {
		s.revertCardSelection(sess)
		span.RecordError(orderErr)
		return nil, orderErr
	}

	// 2. 遥测在网关调用之前上报一次；跳转后控制权离开本系统，没有后续事件
	s.telemetry.Report(ctx, 4, "card payment selected", details)

	// 3. 网关调用不持会话锁：调用期间关闭会话不会被阻塞，结果会被直接丢弃
	gatewaySess, err := s.gateway.CreateCheckoutSession(ctx, gatewayReq)
	if err != nil {
		s.revertCardSelection(sess)
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout session creation failed")
		logger.Ctx(ctx).Error().Err(err).Str("order", orderID).
			Msg("card payment failed, recommending bank transfer")
		return nil, domain.ErrGatewayUnavailable
	}

	sess.mu.Lock()
	if sess.cardInFlight {
		sess.cardInFlight = false
	}
	sess.mu.Unlock()

	// 4. 更新订单记录为已跳转。失败只记日志：用户此刻已经拿到跳转地址
	order.MarkCardRedirected()
	if err := s.orders.Save(ctx, order); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order", orderID).
			Msg("failed to mark order as card redirected")
	}

	span.AddEvent("Hosted checkout session created.")
	logger.Ctx(ctx).Info().Str("order", orderID).Msg("redirecting to hosted checkout")
	return &PaymentResult{
		Method:      string(domain.PaymentCard),
		OrderID:     orderID,
		RedirectURL: gatewaySess.URL,
	}, nil
}

// revertCardSelection 把会话恢复到支付方式未选择的子状态。
func (s *CheckoutService) revertCardSelection(sess *WizardSession) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.cardInFlight = false
	sess.Draft.PaymentMethod = domain.PaymentUnset
	if sess.Step == domain.StepPayment {
		sess.Phase = domain.PhaseSelecting
	}
}

// sendConfirmationAsync 异步请求确认邮件，与遥测一样和调用方生命周期解耦。
func (s *CheckoutService) sendConfirmationAsync(ctx context.Context, order *domain.Order) {
	if s.mailer == nil {
		return
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Ctx(context.Background()).Error().
					Interface("panic", r).Msg("confirmation mail dispatch panicked")
			}
		}()
		bgCtx := trace.ContextWithRemoteSpanContext(context.Background(), spanCtx)
		bgCtx, cancel := context.WithTimeout(bgCtx, 5*time.Second)
		defer cancel()
		if err := s.mailer.SendOrderConfirmation(bgCtx, order); err != nil {
			logger.Ctx(bgCtx).Warn().Err(err).Str("order", order.ID).
				Msg("failed to enqueue confirmation mail")
		}
	}()
}

// cardMetadata 把订单草稿摊平成网关能接受的字符串元数据。
func cardMetadata(draft *domain.OrderDraft) map[string]string {
	return map[string]string{
		"planTitle": draft.Plan.Title,
		"model":     draft.ModelSelection.DisplayName(),
		"platforms": strings.Join(draft.MediaBrief.Platforms, ","),
		"budget":    draft.MediaBrief.Budget,
		"audience":  draft.MediaBrief.Audience,
		"region":    draft.MediaBrief.Region,
		"company":   draft.Contact.Company,
		"phone":     draft.Contact.Phone,
	}
}

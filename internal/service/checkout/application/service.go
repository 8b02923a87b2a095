package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"mirae/internal/pkg/logger"
	"mirae/internal/service/checkout/domain"
	"mirae/internal/service/checkout/port"
)

// CheckoutService 编排结账向导的完整生命周期。
// 它是 OrderDraft 的唯一持有方：目录、订单库、支付网关、邮件和遥测
// 都通过出站端口注入，业务流程本身不关心它们背后的实现。
type CheckoutService struct {
	catalog      port.CatalogStore
	orders       domain.OrderRepository
	gateway      port.PaymentGateway
	mailer       port.Mailer
	reservations port.ReservationStore
	telemetry    *TelemetrySidecar
	tracer       trace.Tracer

	countdownSeconds int
	promotionEnabled bool

	// persistRetryDelay 是 3→4 落库失败后唯一一次重试前的等待
	persistRetryDelay time.Duration

	mu       sync.RWMutex
	sessions map[string]*WizardSession
}

func NewCheckoutService(
	catalog port.CatalogStore,
	orders domain.OrderRepository,
	gateway port.PaymentGateway,
	mailer port.Mailer,
	reservations port.ReservationStore,
	telemetry *TelemetrySidecar,
	tracer trace.Tracer,
	countdownSeconds int,
	promotionEnabled bool,
) *CheckoutService {
	if countdownSeconds <= 0 {
		countdownSeconds = 1800
	}
	return &CheckoutService{
		catalog:           catalog,
		orders:            orders,
		gateway:           gateway,
		mailer:            mailer,
		reservations:      reservations,
		telemetry:         telemetry,
		tracer:            tracer,
		countdownSeconds:  countdownSeconds,
		promotionEnabled:  promotionEnabled,
		persistRetryDelay: 300 * time.Millisecond,
		sessions:          make(map[string]*WizardSession),
	}
}

// OpenSession 打开一个新的向导会话：并行拉取一次目录快照，之后会话期间不再刷新。
func (s *CheckoutService) OpenSession(ctx context.Context) (*SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.OpenSession")
	defer span.End()

	snapshot := &domain.CatalogSnapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		plans, err := s.catalog.ActivePlans(gctx)
		snapshot.Plans = plans
		return err
	})
	g.Go(func() error {
		artists, err := s.catalog.Artists(gctx)
		snapshot.Artists = artists
		return err
	})
	g.Go(func() error {
		promo, err := s.catalog.ActivePromotion(gctx)
		snapshot.Promotion = promo
		return err
	})
	g.Go(func() error {
		offer, err := s.catalog.CustomModelSettings(gctx)
		snapshot.CustomModel = offer
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load catalog snapshot")
		return nil, err
	}

	if !s.promotionEnabled {
		snapshot.Promotion = nil
	}

	sess := newWizardSession(uuid.New().String(), snapshot)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	span.SetAttributes(attribute.String("checkout.session_id", sess.ID))
	logger.Ctx(ctx).Info().Str("session", sess.ID).Msg("checkout session opened")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(true), nil
}

// GetSession 返回会话的当前状态。
func (s *CheckoutService) GetSession(ctx context.Context, sessionID string) (*SessionView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(true), nil
}

// SubmitPlanStep 处理 1→2 转移：落定套餐与模特选择。
// 守卫不满足时返回 ErrStepLocked，状态保持不变。
func (s *CheckoutService) SubmitPlanStep(ctx context.Context, sessionID string, req *PlanStepRequest) (*SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.SubmitPlanStep")
	defer span.End()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.Step != domain.StepPlanModel {
		return nil, domain.ErrInvalidTransition
	}

	if req.PlanID != "" {
		plan := sess.Catalog.PlanByID(req.PlanID)
		if plan == nil {
			return nil, domain.ErrUnknownPlan
		}
		sess.Draft.Plan = plan
	}

	// 整体替换模特选择：切换变体时旧的模特引用随之清空
	switch strings.ToLower(req.ModelType) {
	case "artist":
		artist := sess.Catalog.ArtistByID(req.ArtistID)
		if artist == nil {
			return nil, domain.ErrUnknownArtist
		}
		sess.Draft.ModelSelection = domain.SelectArtist(artist)
	case "custom":
		sess.Draft.ModelSelection = domain.SelectCustom(sess.Catalog.CustomModel)
	default:
		sess.Draft.ModelSelection = domain.NoModel()
	}

	if !domain.CanAdvance(sess.Step, sess.Draft) {
		return nil, domain.ErrStepLocked
	}

	s.telemetry.Report(ctx, 1, "plan+model selected", sess.planTelemetryDetails())
	sess.Step = domain.StepMedia
	span.SetAttributes(attribute.String("checkout.step", sess.Step.String()))
	return sess.view(false), nil
}

// SubmitMediaStep 处理 2→3 转移，第二步没有守卫。
func (s *CheckoutService) SubmitMediaStep(ctx context.Context, sessionID string, req *MediaStepRequest) (*SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.SubmitMediaStep")
	defer span.End()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.Step != domain.StepMedia {
		return nil, domain.ErrInvalidTransition
	}

	sess.Draft.MediaBrief = domain.MediaBrief{
		Platforms: req.Platforms,
		Budget:    req.Budget,
		Audience:  req.Audience,
		Region:    req.Region,
	}

	s.telemetry.Report(ctx, 2, "media selected", map[string]string{
		"platforms": strings.Join(req.Platforms, ","),
		"budget":    req.Budget,
		"audience":  req.Audience,
		"region":    req.Region,
	})
	sess.Step = domain.StepContact
	return sess.view(false), nil
}

// SubmitContactStep 处理 3→4 转移。这是唯一一个协作方调用在关键路径上的步骤：
// 订单草稿必须落库成功，转移才算完成；失败时会话停在第三步，数据原样保留，
// 用户可直接重试。
func (s *CheckoutService) SubmitContactStep(ctx context.Context, sessionID string, req *ContactStepRequest) (*SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.SubmitContactStep")
	defer span.End()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.Step != domain.StepContact {
		return nil, domain.ErrInvalidTransition
	}

	sess.Draft.Contact = domain.ContactInfo{
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}

	if !domain.CanAdvance(sess.Step, sess.Draft) {
		return nil, domain.ErrStepLocked
	}

	// 会话内第一次落库时生成订单 ID，重试和终端处理器都复用它
	if sess.OrderID == "" {
		sess.OrderID = uuid.New().String()
	}
	order, err := domain.NewOrder(sess.OrderID, sess.Draft, sess.Catalog.Promotion)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.persistWithRetry(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "draft order persistence failed")
		logger.Ctx(ctx).Error().Err(err).Str("order", order.ID).
			Msg("failed to persist draft order, staying on contact step")
		return nil, domain.ErrOrderNotPersisted
	}
	span.AddEvent("Draft order saved.")

	s.telemetry.Report(ctx, 3, "info submitted", map[string]string{
		"name":    req.Name,
		"email":   req.Email,
		"company": req.Company,
	})

	sess.Step = domain.StepPayment
	sess.Phase = domain.PhaseSelecting
	return sess.view(false), nil
}

// persistWithRetry 执行订单落库，失败后退避一次再试。
// 第二次仍失败则把错误交还给转移逻辑，由用户决定是否重试。
func (s *CheckoutService) persistWithRetry(ctx context.Context, order *domain.Order) error {
	err := s.orders.Save(ctx, order)
	if err == nil {
		return nil
	}
	logger.Ctx(ctx).Warn().Err(err).Str("order", order.ID).Msg("order save failed, retrying once")

	select {
	case <-time.After(s.persistRetryDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.orders.Save(ctx, order)
}

// Back 处理 n→n−1 后退：已录入数据全部保留，只有离开第四步时
// 才清掉支付方式和倒计时等瞬时状态。
func (s *CheckoutService) Back(ctx context.Context, sessionID string) (*SessionView, error) {
	_, span := s.tracer.Start(ctx, "checkout.Back")
	defer span.End()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.cardInFlight {
		// 网关调用进行中，前进/后退控制都处于禁用状态
		return nil, domain.ErrInvalidTransition
	}

	prev, ok := domain.PrevStep(sess.Step)
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	if sess.Step == domain.StepPayment {
		sess.resetPaymentState()
		sess.Phase = domain.PhaseNone
		s.releaseReservation(ctx, sess.OrderID)
	}
	sess.Step = prev
	return sess.view(false), nil
}

// Close 关闭向导：丢弃整份草稿并确定性地停掉倒计时。
// 已经发出的后台请求允许自行完成，结果直接丢弃；关闭不上报遥测。
func (s *CheckoutService) Close(ctx context.Context, sessionID string) error {
	_, span := s.tracer.Start(ctx, "checkout.Close")
	defer span.End()

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.resetPaymentState()
	orderID := sess.OrderID
	sess.mu.Unlock()

	s.releaseReservation(ctx, orderID)
	logger.Ctx(ctx).Info().Str("session", sessionID).Msg("checkout session closed, draft discarded")
	return nil
}

// CountdownFor 暴露会话的倒计时器，供 WebSocket 推送使用。
func (s *CheckoutService) CountdownFor(sessionID string) (*domain.Countdown, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Countdown, nil
}

func (s *CheckoutService) session(id string) (*WizardSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// releaseReservation 清理银行转账的预留 key，失败只记日志。
func (s *CheckoutService) releaseReservation(ctx context.Context, orderID string) {
	if orderID == "" || s.reservations == nil {
		return
	}
	if err := s.reservations.Release(ctx, orderID); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("order", orderID).Msg("failed to release reservation")
	}
}

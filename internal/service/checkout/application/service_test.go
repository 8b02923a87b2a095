package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	"mirae/internal/service/checkout/domain"
)

type testEnv struct {
	svc          *CheckoutService
	catalog      *fakeCatalog
	repo         *fakeOrderRepo
	gateway      *fakeGateway
	mailer       *fakeMailer
	telemetry    *fakeTelemetry
	reservations *fakeReservations
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		catalog: &fakeCatalog{
			plans: []domain.Plan{
				{ID: "plan-standard", Title: "Standard Production", Price: 5_500_000, Active: true},
				{ID: "plan-premium", Title: "Premium Production", Price: 9_900_000, Active: true, Featured: true},
			},
			artists: []domain.Artist{
				{ID: "artist-yuna", Name: "Yuna", AddOnPrice: 500_000},
			},
			promo:  &domain.Promotion{Rate: 50, Badge: "LAUNCH50"},
			custom: domain.CustomModelOffer{Title: "Custom Model", Price: 800_000},
		},
		repo:         newFakeOrderRepo(),
		gateway:      &fakeGateway{url: "https://pay.example.com/cs_123"},
		mailer:       &fakeMailer{},
		telemetry:    &fakeTelemetry{},
		reservations: newFakeReservations(),
	}

	env.svc = NewCheckoutService(
		env.catalog,
		env.repo,
		env.gateway,
		env.mailer,
		env.reservations,
		NewTelemetrySidecar(env.telemetry, time.Second),
		otel.Tracer("checkout-test"),
		1800,
		true,
	)
	env.svc.persistRetryDelay = time.Millisecond
	return env
}

func (env *testEnv) openSession(t *testing.T) string {
	t.Helper()
	view, err := env.svc.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	return view.SessionID
}

// advanceToPayment 把会话推进到第四步：标准套餐 + Yuna，半价活动生效，应付 3,000,000。
func (env *testEnv) advanceToPayment(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	id := env.openSession(t)

	if _, err := env.svc.SubmitPlanStep(ctx, id, &PlanStepRequest{
		PlanID: "plan-standard", ModelType: "artist", ArtistID: "artist-yuna",
	}); err != nil {
		t.Fatalf("SubmitPlanStep() error = %v", err)
	}
	if _, err := env.svc.SubmitMediaStep(ctx, id, &MediaStepRequest{
		Platforms: []string{"youtube"}, Budget: "10M",
	}); err != nil {
		t.Fatalf("SubmitMediaStep() error = %v", err)
	}
	view, err := env.svc.SubmitContactStep(ctx, id, &ContactStepRequest{
		Name: "Kim", Email: "kim@example.com",
	})
	if err != nil {
		t.Fatalf("SubmitContactStep() error = %v", err)
	}
	if view.Step != "PAYMENT" || view.PaymentPhase != "SELECTING" {
		t.Fatalf("after contact step: step=%s phase=%s", view.Step, view.PaymentPhase)
	}
	return id
}

func TestOpenSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	view, err := env.svc.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}

	if view.SessionID == "" {
		t.Error("session id should not be empty")
	}
	if view.Step != "PLAN_MODEL" {
		t.Errorf("step = %s, want PLAN_MODEL", view.Step)
	}
	if view.Catalog == nil {
		t.Fatal("opening view should carry the catalog snapshot")
	}
	if len(view.Catalog.Plans) != 2 || len(view.Catalog.Artists) != 1 {
		t.Errorf("catalog = %d plans, %d artists", len(view.Catalog.Plans), len(view.Catalog.Artists))
	}
	if view.Catalog.Promotion == nil || view.Catalog.Promotion.Rate != 50 {
		t.Errorf("promotion missing from catalog view: %+v", view.Catalog.Promotion)
	}
	if view.Total != 0 {
		t.Errorf("fresh session total = %d, want 0", view.Total)
	}
}

func TestOpenSessionPromotionDisabled(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.svc.promotionEnabled = false

	view, err := env.svc.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	if view.Catalog.Promotion != nil {
		t.Error("promotion should be hidden when the feature flag is off")
	}
}

func TestOpenSessionCatalogError(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.catalog.err = errors.New("catalog db is down")

	if _, err := env.svc.OpenSession(context.Background()); err == nil {
		t.Error("OpenSession() should fail when the catalog is unreachable")
	}
}

func TestGetSessionUnknown(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.svc.GetSession(context.Background(), "nope")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("GetSession() error = %v, want ErrSessionNotFound", err)
	}
}

func TestSubmitPlanStepGuards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     *PlanStepRequest
		wantErr error
	}{
		{
			name:    "unknown plan",
			req:     &PlanStepRequest{PlanID: "plan-ghost"},
			wantErr: domain.ErrUnknownPlan,
		},
		{
			name:    "unknown artist",
			req:     &PlanStepRequest{PlanID: "plan-standard", ModelType: "artist", ArtistID: "artist-ghost"},
			wantErr: domain.ErrUnknownArtist,
		},
		{
			name:    "no plan selected",
			req:     &PlanStepRequest{ModelType: "custom"},
			wantErr: domain.ErrStepLocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			id := env.openSession(t)

			_, err := env.svc.SubmitPlanStep(context.Background(), id, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SubmitPlanStep() error = %v, want %v", err, tt.wantErr)
			}

			// 守卫失败不改变状态
			view, err := env.svc.GetSession(context.Background(), id)
			if err != nil {
				t.Fatal(err)
			}
			if view.Step != "PLAN_MODEL" {
				t.Errorf("step moved to %s on a rejected submit", view.Step)
			}
		})
	}
}

func TestSubmitPlanStepAdvances(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.openSession(t)

	view, err := env.svc.SubmitPlanStep(context.Background(), id, &PlanStepRequest{
		PlanID: "plan-standard", ModelType: "artist", ArtistID: "artist-yuna",
	})
	if err != nil {
		t.Fatalf("SubmitPlanStep() error = %v", err)
	}
	if view.Step != "MEDIA" {
		t.Errorf("step = %s, want MEDIA", view.Step)
	}
	if view.Total != 3_000_000 {
		t.Errorf("total = %d, want 3000000 (half-price launch promo)", view.Total)
	}
	if view.ProductName != "Standard Production + Yuna" {
		t.Errorf("product name = %q", view.ProductName)
	}

	// 离开第一步后不允许重复提交
	_, err = env.svc.SubmitPlanStep(context.Background(), id, &PlanStepRequest{PlanID: "plan-premium"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("resubmit error = %v, want ErrInvalidTransition", err)
	}
}

func TestModelSwitchReplacesSelection(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.openSession(t)

	// 先选模特但没选套餐，守卫不放行，选择本身留在草稿里
	_, err := env.svc.SubmitPlanStep(context.Background(), id, &PlanStepRequest{
		ModelType: "artist", ArtistID: "artist-yuna",
	})
	if !errors.Is(err, domain.ErrStepLocked) {
		t.Fatalf("error = %v, want ErrStepLocked", err)
	}

	// 换成定制模特：旧的模特引用必须被整体替换掉
	view, err := env.svc.SubmitPlanStep(context.Background(), id, &PlanStepRequest{
		PlanID: "plan-standard", ModelType: "custom",
	})
	if err != nil {
		t.Fatalf("SubmitPlanStep() error = %v", err)
	}
	if view.ModelSummary != "Custom Model" {
		t.Errorf("model summary = %q, want Custom Model", view.ModelSummary)
	}
	if view.Total != 3_150_000 { // (5,500,000 + 800,000) 的半价
		t.Errorf("total = %d, want 3150000", view.Total)
	}
}

func TestTelemetryFailureNeverBlocksTransitions(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.telemetry.err = errors.New("webhook timeout")

	env.advanceToPayment(t)
}

func TestTelemetryPanicIsContained(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.telemetry.panics = true

	env.advanceToPayment(t)
}

func TestTelemetryEventsDelivered(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.advanceToPayment(t)

	// 上报是异步的，轮询等待三步事件全部到达
	deadline := time.Now().Add(2 * time.Second)
	for env.telemetry.eventCount() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("telemetry events = %d, want 3", env.telemetry.eventCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestContactStepPersistFailureStaysOnContact(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.openSession(t)

	if _, err := env.svc.SubmitPlanStep(ctx, id, &PlanStepRequest{PlanID: "plan-standard"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.SubmitMediaStep(ctx, id, &MediaStepRequest{}); err != nil {
		t.Fatal(err)
	}

	env.repo.failRemaining = 10
	_, err := env.svc.SubmitContactStep(ctx, id, &ContactStepRequest{Name: "Kim", Email: "kim@example.com"})
	if !errors.Is(err, domain.ErrOrderNotPersisted) {
		t.Fatalf("error = %v, want ErrOrderNotPersisted", err)
	}
	if got := env.repo.saveCount(); got != 2 {
		t.Errorf("save attempts = %d, want 2 (one retry)", got)
	}

	// 会话停在第三步，已录入数据原样保留
	view, err := env.svc.GetSession(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if view.Step != "CONTACT" {
		t.Errorf("step = %s, want CONTACT", view.Step)
	}
	if view.Contact == nil || view.Contact.Name != "Kim" {
		t.Errorf("contact data lost after persistence failure: %+v", view.Contact)
	}

	// 存储恢复后直接重试成功
	env.repo.mu.Lock()
	env.repo.failRemaining = 0
	env.repo.mu.Unlock()
	view, err = env.svc.SubmitContactStep(ctx, id, &ContactStepRequest{Name: "Kim", Email: "kim@example.com"})
	if err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if view.Step != "PAYMENT" || view.PaymentPhase != "SELECTING" {
		t.Errorf("after retry: step=%s phase=%s", view.Step, view.PaymentPhase)
	}
}

func TestContactStepRetriesOnceAndSucceeds(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.openSession(t)

	if _, err := env.svc.SubmitPlanStep(ctx, id, &PlanStepRequest{PlanID: "plan-standard"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.SubmitMediaStep(ctx, id, &MediaStepRequest{}); err != nil {
		t.Fatal(err)
	}

	env.repo.failRemaining = 1
	view, err := env.svc.SubmitContactStep(ctx, id, &ContactStepRequest{Name: "Kim", Email: "kim@example.com"})
	if err != nil {
		t.Fatalf("SubmitContactStep() error = %v", err)
	}
	if view.Step != "PAYMENT" {
		t.Errorf("step = %s, want PAYMENT", view.Step)
	}
	if got := env.repo.saveCount(); got != 2 {
		t.Errorf("save attempts = %d, want 2", got)
	}
}

func TestBankTransfer(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.mailer.err = errors.New("kafka unreachable") // 邮件失败不影响任何用户可见状态
	ctx := context.Background()
	id := env.advanceToPayment(t)

	result, err := env.svc.SelectPayment(ctx, id, &PaymentRequest{Method: "bank"})
	if err != nil {
		t.Fatalf("SelectPayment() error = %v", err)
	}
	defer env.svc.Close(ctx, id)

	if result.Method != "bank" || result.OrderID == "" {
		t.Errorf("result = %+v", result)
	}
	if result.Countdown == nil || result.Countdown.Remaining != 1800 || !result.Countdown.Active {
		t.Fatalf("countdown = %+v, want 30 minutes running", result.Countdown)
	}
	if result.Countdown.Urgent {
		t.Error("a fresh countdown should not be urgent")
	}

	order, ok := env.repo.get(result.OrderID)
	if !ok {
		t.Fatal("order record missing after bank transfer")
	}
	if order.State != domain.StateAwaitingTransfer || order.PaymentMethod != domain.PaymentBank {
		t.Errorf("order state=%q method=%q", order.State, order.PaymentMethod)
	}
	if order.TotalAmount != 3_000_000 {
		t.Errorf("order total = %d, want 3000000", order.TotalAmount)
	}

	if ttl, ok := env.reservations.ttlFor(result.OrderID); !ok || ttl != 30*time.Minute {
		t.Errorf("reservation ttl = %v, want 30m", ttl)
	}

	view, err := env.svc.GetSession(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if view.PaymentPhase != "RESOLVED" || view.Method != "bank" {
		t.Errorf("session view: phase=%s method=%s", view.PaymentPhase, view.Method)
	}
	if view.Countdown == nil {
		t.Error("session view should expose the running countdown")
	}

	// 已落定后不允许再次选择
	_, err = env.svc.SelectPayment(ctx, id, &PaymentRequest{Method: "card"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("second selection error = %v, want ErrInvalidTransition", err)
	}
}

func TestBackFromPaymentClearsTransientState(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.advanceToPayment(t)

	if _, err := env.svc.SelectPayment(ctx, id, &PaymentRequest{Method: "bank"}); err != nil {
		t.Fatal(err)
	}
	countdown, err := env.svc.CountdownFor(id)
	if err != nil {
		t.Fatal(err)
	}

	view, err := env.svc.Back(ctx, id)
	if err != nil {
		t.Fatalf("Back() error = %v", err)
	}
	if view.Step != "CONTACT" {
		t.Errorf("step = %s, want CONTACT", view.Step)
	}
	if view.PaymentPhase != "" || view.Method != "" {
		t.Errorf("payment state survived Back: phase=%q method=%q", view.PaymentPhase, view.Method)
	}
	if countdown.Active() {
		t.Error("countdown still running after leaving the payment step")
	}
	if env.reservations.releaseCount() == 0 {
		t.Error("reservation should be released when leaving the payment step")
	}

	// 联系人数据保留，重新前进无需重新录入
	if view.Contact == nil || view.Contact.Name != "Kim" {
		t.Errorf("contact data lost on Back: %+v", view.Contact)
	}
}

func TestBackFromFirstStep(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.openSession(t)

	_, err := env.svc.Back(context.Background(), id)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("Back() error = %v, want ErrInvalidTransition", err)
	}
}

func TestCardPayment(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.advanceToPayment(t)

	result, err := env.svc.SelectPayment(ctx, id, &PaymentRequest{Method: "card"})
	if err != nil {
		t.Fatalf("SelectPayment() error = %v", err)
	}
	if result.Method != "card" || result.RedirectURL != "https://pay.example.com/cs_123" {
		t.Errorf("result = %+v", result)
	}
	if result.Countdown != nil {
		t.Error("card branch should not start a countdown")
	}

	order, ok := env.repo.get(result.OrderID)
	if !ok {
		t.Fatal("order record missing after card redirect")
	}
	if order.State != domain.StateCardRedirected || order.PaymentMethod != domain.PaymentCard {
		t.Errorf("order state=%q method=%q", order.State, order.PaymentMethod)
	}
}

func TestCardFailureFallsBackToSelecting(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.gateway.err = errors.New("gateway 503")
	ctx := context.Background()
	id := env.advanceToPayment(t)

	_, err := env.svc.SelectPayment(ctx, id, &PaymentRequest{Method: "card"})
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Fatalf("error = %v, want ErrGatewayUnavailable", err)
	}

	// 失败后回到未选择状态，银行转账路径必须畅通
	view, err := env.svc.GetSession(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if view.PaymentPhase != "SELECTING" || view.Method != "" {
		t.Errorf("after card failure: phase=%s method=%q", view.PaymentPhase, view.Method)
	}

	result, err := env.svc.SelectPayment(ctx, id, &PaymentRequest{Method: "bank"})
	if err != nil {
		t.Fatalf("bank fallback error = %v", err)
	}
	defer env.svc.Close(ctx, id)
	if result.Method != "bank" || result.Countdown == nil {
		t.Errorf("bank fallback result = %+v", result)
	}
}

func TestCardRejectsNonPositiveTotal(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.catalog.plans = []domain.Plan{{ID: "plan-free", Title: "Free Pilot", Price: 0, Active: true}}
	env.catalog.promo = nil
	ctx := context.Background()
	id := env.openSession(t)

	if _, err := env.svc.SubmitPlanStep(ctx, id, &PlanStepRequest{PlanID: "plan-free"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.SubmitMediaStep(ctx, id, &MediaStepRequest{}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.SubmitContactStep(ctx, id, &ContactStepRequest{Name: "Kim", Email: "kim@example.com"}); err != nil {
		t.Fatal(err)
	}

	_, err := env.svc.SelectPayment(ctx, id, &PaymentRequest{Method: "card"})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("error = %v, want ErrInvalidAmount", err)
	}
	if env.gateway.calls != 0 {
		t.Error("gateway should not be called for a non-positive amount")
	}

	view, err := env.svc.GetSession(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if view.PaymentPhase != "SELECTING" {
		t.Errorf("phase = %s, want SELECTING", view.PaymentPhase)
	}
}

func TestUnknownPaymentMethod(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.advanceToPayment(t)

	_, err := env.svc.SelectPayment(context.Background(), id, &PaymentRequest{Method: "crypto"})
	if !errors.Is(err, domain.ErrUnknownPaymentMethod) {
		t.Errorf("error = %v, want ErrUnknownPaymentMethod", err)
	}
}

func TestCloseDiscardsSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.advanceToPayment(t)

	if _, err := env.svc.SelectPayment(ctx, id, &PaymentRequest{Method: "bank"}); err != nil {
		t.Fatal(err)
	}
	countdown, err := env.svc.CountdownFor(id)
	if err != nil {
		t.Fatal(err)
	}

	if err := env.svc.Close(ctx, id); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if countdown.Active() {
		t.Error("countdown still running after Close")
	}
	if env.reservations.releaseCount() == 0 {
		t.Error("reservation should be released on Close")
	}

	_, err = env.svc.GetSession(ctx, id)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("GetSession() after Close = %v, want ErrSessionNotFound", err)
	}
	if err := env.svc.Close(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("double Close() = %v, want ErrSessionNotFound", err)
	}
}

func TestCountdownForUnknownSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.svc.CountdownFor("nope")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("CountdownFor() error = %v, want ErrSessionNotFound", err)
	}
}

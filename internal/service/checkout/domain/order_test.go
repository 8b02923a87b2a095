package domain

import "testing"

func completeDraft() *OrderDraft {
	d := NewDraft()
	d.Plan = &Plan{ID: "plan-standard", Title: "Standard Production", Price: 5_500_000}
	d.ModelSelection = SelectArtist(&Artist{ID: "artist-yuna", Name: "Yuna", AddOnPrice: 500_000})
	d.MediaBrief = MediaBrief{Platforms: []string{"youtube", "instagram"}, Budget: "10M", Region: "KR"}
	d.Contact = ContactInfo{Name: "Kim", Email: "kim@example.com", Company: "Acme"}
	return d
}

func TestNewOrder(t *testing.T) {
	t.Parallel()

	order, err := NewOrder("ord-1", completeDraft(), &Promotion{Rate: 50})
	if err != nil {
		t.Fatalf("NewOrder() error = %v", err)
	}

	if order.State != StateDraft {
		t.Errorf("new order state = %q, want %q", order.State, StateDraft)
	}
	if order.TotalAmount != 3_000_000 {
		t.Errorf("TotalAmount = %d, want 3000000", order.TotalAmount)
	}
	if order.ProductName != "Standard Production + Yuna" {
		t.Errorf("ProductName = %q", order.ProductName)
	}
	if order.Platforms != "youtube,instagram" {
		t.Errorf("Platforms = %q", order.Platforms)
	}
	if order.PromoRate != 50 {
		t.Errorf("PromoRate = %d, want 50", order.PromoRate)
	}
	if order.PaymentMethod != PaymentUnset {
		t.Errorf("new order should not carry a payment method: %q", order.PaymentMethod)
	}
}

func TestNewOrderRejectsIncompleteDraft(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		id    string
		setup func(*OrderDraft)
	}{
		{"empty id", "", func(d *OrderDraft) {}},
		{"missing plan", "ord-1", func(d *OrderDraft) { d.Plan = nil }},
		{"missing name", "ord-1", func(d *OrderDraft) { d.Contact.Name = "" }},
		{"missing email", "ord-1", func(d *OrderDraft) { d.Contact.Email = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := completeDraft()
			tt.setup(d)
			if _, err := NewOrder(tt.id, d, nil); err == nil {
				t.Error("NewOrder() should reject an incomplete draft")
			}
		})
	}
}

func TestOrderStateTransitions(t *testing.T) {
	t.Parallel()

	order, err := NewOrder("ord-1", completeDraft(), nil)
	if err != nil {
		t.Fatal(err)
	}

	// 草稿态不能直接标记已支付
	if err := order.MarkPaid(); err == nil {
		t.Error("MarkPaid() on a draft order should fail")
	}

	order.MarkAwaitingTransfer()
	if order.State != StateAwaitingTransfer || order.PaymentMethod != PaymentBank {
		t.Errorf("after MarkAwaitingTransfer: state=%q method=%q", order.State, order.PaymentMethod)
	}

	if err := order.MarkPaid(); err != nil {
		t.Fatalf("MarkPaid() error = %v", err)
	}
	if order.State != StatePaid {
		t.Errorf("state = %q, want %q", order.State, StatePaid)
	}

	// 已支付订单不可取消
	if err := order.Cancel(); err == nil {
		t.Error("Cancel() on a paid order should fail")
	}
}

func TestOrderCancel(t *testing.T) {
	t.Parallel()

	order, err := NewOrder("ord-1", completeDraft(), nil)
	if err != nil {
		t.Fatal(err)
	}
	order.MarkCardRedirected()
	if order.State != StateCardRedirected || order.PaymentMethod != PaymentCard {
		t.Errorf("after MarkCardRedirected: state=%q method=%q", order.State, order.PaymentMethod)
	}

	if err := order.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if order.State != StateCancelled {
		t.Errorf("state = %q, want %q", order.State, StateCancelled)
	}
}

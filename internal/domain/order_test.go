package domain

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderDelivered, true},
		{OrderProcessing, OrderShipped, true},
		{OrderShipped, OrderDelivered, true},
		{OrderPending, OrderCancelled, true},
		{OrderShipped, OrderCancelled, true},
		{OrderShipped, OrderPending, false},
		{OrderDelivered, OrderPending, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderPending, OrderPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestAuthorizeTransition(t *testing.T) {
	order := Order{ID: "o1", UserID: "owner", Status: OrderPending}
	owner := Principal{UserID: "owner"}
	stranger := Principal{UserID: "stranger"}
	admin := Principal{UserID: "admin", IsStaff: true}

	if err := AuthorizeTransition(owner, order, OrderCancelled); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if err := AuthorizeTransition(owner, order, OrderShipped); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("owner ship: expected permission denied, got %v", err)
	}
	if err := AuthorizeTransition(stranger, order, OrderCancelled); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("stranger cancel: expected permission denied, got %v", err)
	}
	if err := AuthorizeTransition(admin, order, OrderShipped); err != nil {
		t.Fatalf("admin ship: %v", err)
	}

	delivered := Order{ID: "o2", UserID: "owner", Status: OrderDelivered}
	if err := AuthorizeTransition(admin, delivered, OrderPending); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("admin rewind: expected illegal transition, got %v", err)
	}
	if err := AuthorizeTransition(owner, delivered, OrderCancelled); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("owner cancel delivered: expected illegal transition, got %v", err)
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus(" shipped ")
	if err != nil || st != OrderShipped {
		t.Fatalf("unexpected %q %v", st, err)
	}
	_, err = ParseOrderStatus("lost")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOrderTotalUsesSnapshotPrices(t *testing.T) {
	o := Order{Items: []OrderItem{
		{PriceCents: 1999, Quantity: 2},
		{PriceCents: 500, Quantity: 1},
	}}
	if got := o.TotalCents(); got != 4498 {
		t.Fatalf("expected 4498, got %d", got)
	}
}

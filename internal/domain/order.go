package domain

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of a placed order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// progress ranks the forward statuses. Cancelled sits outside the chain.
var progress = map[OrderStatus]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

// ParseOrderStatus accepts a status name case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", Invalid("status", "unknown order status %q", s)
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition reports whether from -> to is legal: forward along
// Pending, Processing, Shipped, Delivered (skips allowed), or to Cancelled
// from any non-terminal status.
func CanTransition(from, to OrderStatus) bool {
	if from.IsTerminal() || from == to {
		return false
	}
	if to == OrderCancelled {
		return true
	}
	fromRank, ok := progress[from]
	if !ok {
		return false
	}
	toRank, ok := progress[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// AuthorizeTransition applies both the ownership rule and the state machine.
// Owners may only cancel; privileged callers may make any legal transition.
func AuthorizeTransition(p Principal, o Order, to OrderStatus) error {
	if !CanMutate(p, o.UserID) {
		return ErrPermissionDenied
	}
	if !IsPrivileged(p) && to != OrderCancelled {
		return ErrPermissionDenied
	}
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.Status, to)
	}
	return nil
}

type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	Items     []OrderItem `json:"items"`
}

// OrderItem freezes the product price at the time the order was placed.
type OrderItem struct {
	ID          string `json:"id"`
	OrderID     string `json:"orderId"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"priceCents"`
}

func (i OrderItem) SubtotalCents() int64 {
	return i.PriceCents * int64(i.Quantity)
}

// TotalCents sums the snapshotted item prices.
func (o Order) TotalCents() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.SubtotalCents()
	}
	return total
}

package domain

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string    `json:"id"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	Quantity    int       `json:"quantity"`
	IsAvailable bool      `json:"isAvailable"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
}

// Available reports whether the product has stock. It mirrors the stored
// is_available column, which storage derives from quantity.
func (p Product) Available() bool {
	return p.Quantity > 0
}

// FormatCents renders an amount of cents as a fixed two-decimal string.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

var maxPriceCents = decimal.NewFromInt(math.MaxInt64)

// ParsePrice converts a decimal price such as "12.50" into cents. Negative
// amounts, sub-cent precision and amounts past int64 cents are rejected.
func ParsePrice(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, Invalid("price", "not a number: %q", s)
	}
	if d.IsNegative() {
		return 0, Invalid("price", "must not be negative")
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, Invalid("price", "at most two decimal places allowed")
	}
	if cents.GreaterThan(maxPriceCents) {
		return 0, Invalid("price", "too large")
	}
	return cents.IntPart(), nil
}

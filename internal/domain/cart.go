package domain

import "time"

// Cart is the single active basket of a user. Its total is always derived
// from the lines and current product prices.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	Lines     []CartLine `json:"items"`
}

type CartLine struct {
	ID       string    `json:"id"`
	CartID   string    `json:"cartId"`
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// SubtotalCents is the line's current price times its quantity.
func (l CartLine) SubtotalCents() int64 {
	return l.Product.PriceCents * int64(l.Quantity)
}

// TotalCents sums every line subtotal.
func (c Cart) TotalCents() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.SubtotalCents()
	}
	return total
}

// IsEmpty reports whether the cart holds no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

package httpserver

import (
	"time"

	"storefront/internal/domain"
)

type productResponse struct {
	ID          string    `json:"id"`
	CategoryID  *string   `json:"category,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Quantity    int       `json:"quantity"`
	IsAvailable bool      `json:"is_available"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

type cartItemResponse struct {
	ID       string          `json:"id"`
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal string          `json:"subtotal"`
}

type cartResponse struct {
	ID    string             `json:"id,omitempty"`
	Items []cartItemResponse `json:"items"`
	Total string             `json:"total"`
}

type orderItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
}

type orderResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user"`
	Status    domain.OrderStatus  `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	Items     []orderItemResponse `json:"items"`
	Total     string              `json:"total"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"date_joined"`
}

func toProduct(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       domain.FormatCents(p.PriceCents),
		Quantity:    p.Quantity,
		IsAvailable: p.Available(),
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		ModifiedAt:  p.ModifiedAt,
	}
}

func toProducts(ps []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProduct(p))
	}
	return out
}

func toCartItem(l domain.CartLine) cartItemResponse {
	return cartItemResponse{
		ID:       l.ID,
		Product:  toProduct(l.Product),
		Quantity: l.Quantity,
		Subtotal: domain.FormatCents(l.SubtotalCents()),
	}
}

func toCart(c domain.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, toCartItem(l))
	}
	return cartResponse{ID: c.ID, Items: items, Total: domain.FormatCents(c.TotalCents())}
}

func toOrder(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       domain.FormatCents(it.PriceCents),
		})
	}
	return orderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		Items:     items,
		Total:     domain.FormatCents(o.TotalCents()),
	}
}

func toOrders(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrder(o))
	}
	return out
}

func toUser(u domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
	}
}

package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	reviewsvc "storefront/internal/service/review"
	usersvc "storefront/internal/service/user"
)

type UserService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, usersvc.TokenPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Verify(ctx context.Context, accessToken string) error
	Authenticate(ctx context.Context, accessToken string) (domain.Principal, error)
	ListUsers(ctx context.Context, p domain.Principal) ([]domain.User, error)
	Referral(ctx context.Context, userID string) (*usersvc.ReferralSummary, error)
	ShareReferral(ctx context.Context, userID, recipient string) error
}

type CatalogService interface {
	ListProducts(ctx context.Context, filter productrepo.ListFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	SaveProduct(ctx context.Context, p domain.Principal, in catalogsvc.ProductInput) (*domain.Product, error)
	SetStock(ctx context.Context, p domain.Principal, id string, quantity int) (*domain.Product, error)
}

type CartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, in cartsvc.AddItemInput) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, p domain.Principal, itemID string, quantity int) (*domain.CartLine, error)
	RemoveItem(ctx context.Context, p domain.Principal, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type OrderService interface {
	Place(ctx context.Context, userID string) (*domain.Order, error)
	List(ctx context.Context, p domain.Principal) ([]domain.Order, error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, p domain.Principal, id, status string) (*domain.Order, error)
}

type ReviewService interface {
	Submit(ctx context.Context, userID string, in reviewsvc.SubmitInput) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
}

// Deps are the services the router dispatches to.
type Deps struct {
	UserSvc    UserService
	CatalogSvc CatalogService
	CartSvc    CartService
	OrderSvc   OrderService
	ReviewSvc  ReviewService
}

func (d Deps) validate() error {
	switch {
	case d.UserSvc == nil:
		return errors.New("user service required")
	case d.CatalogSvc == nil:
		return errors.New("catalog service required")
	case d.CartSvc == nil:
		return errors.New("cart service required")
	case d.OrderSvc == nil:
		return errors.New("order service required")
	case d.ReviewSvc == nil:
		return errors.New("review service required")
	}
	return nil
}

type handlers struct {
	Deps
	logger *log.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	h := &handlers{Deps: deps, logger: logger}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestID(), gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), metrics.Middleware())
	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(opts.Metrics)))
	}

	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.POST("/token/refresh", h.refreshToken)
	router.POST("/token/verify", h.verifyToken)

	authed := router.Group("/", authMiddleware(deps.UserSvc, logger))
	authed.POST("/logout", h.logout)
	authed.GET("/admin/users", h.listUsers)

	authed.GET("/referral", h.getReferral)
	authed.POST("/referral", h.shareReferral)

	authed.GET("/products", h.listProducts)
	authed.POST("/products", h.saveProduct)
	authed.GET("/products/:id", h.getProduct)
	authed.PATCH("/products/:id/stock", h.setStock)
	authed.GET("/products/:id/reviews", h.listReviews)
	authed.GET("/categories", h.listCategories)
	authed.GET("/categories/:id", h.getCategory)

	authed.GET("/cart-items", h.getCart)
	authed.POST("/cart-items", h.addCartItem)
	authed.DELETE("/cart-items", h.clearCart)
	authed.PATCH("/cart-items/:id", h.updateCartItem)
	authed.DELETE("/cart-items/:id", h.removeCartItem)

	authed.POST("/orders/create", h.placeOrder)
	authed.GET("/orders", h.listOrders)
	authed.GET("/orders/:id", h.getOrder)
	authed.PATCH("/orders/:id", h.updateOrderStatus)

	authed.POST("/reviews", h.submitReview)

	return router, nil
}

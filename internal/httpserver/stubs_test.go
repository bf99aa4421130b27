package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	reviewsvc "storefront/internal/service/review"
	usersvc "storefront/internal/service/user"
)

const (
	testToken   = "good-token"
	testUserID  = "11111111-1111-1111-1111-111111111111"
	testOrderID = "22222222-2222-2222-2222-222222222222"
	testItemID  = "33333333-3333-3333-3333-333333333333"
	testProduct = "44444444-4444-4444-4444-444444444444"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubUserService struct {
	principal    domain.Principal
	user         *domain.User
	err          error
	shareErr     error
	loggedOut    string
	lastRegister usersvc.RegisterInput
}

func (s *stubUserService) Register(_ context.Context, in usersvc.RegisterInput) (*domain.User, error) {
	s.lastRegister = in
	return s.user, s.err
}

func (s *stubUserService) Login(_ context.Context, _, _ string) (*domain.User, usersvc.TokenPair, error) {
	return s.user, usersvc.TokenPair{Access: "a", Refresh: "r", ExpiresIn: 900}, s.err
}

func (s *stubUserService) Logout(_ context.Context, access, _ string) error {
	s.loggedOut = access
	return s.err
}

func (s *stubUserService) Refresh(_ context.Context, _ string) (string, error) {
	return "new-access", s.err
}

func (s *stubUserService) Verify(_ context.Context, _ string) error {
	return s.err
}

func (s *stubUserService) Authenticate(_ context.Context, token string) (domain.Principal, error) {
	if token != testToken {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	return s.principal, nil
}

func (s *stubUserService) ListUsers(_ context.Context, p domain.Principal) ([]domain.User, error) {
	if !p.IsSuperuser {
		return nil, domain.ErrPermissionDenied
	}
	return []domain.User{*s.user}, nil
}

func (s *stubUserService) Referral(_ context.Context, _ string) (*usersvc.ReferralSummary, error) {
	return &usersvc.ReferralSummary{Code: "abcde12345", Credits: decimal.NewFromInt(100), Referrals: 1}, nil
}

func (s *stubUserService) ShareReferral(_ context.Context, _, _ string) error {
	return s.shareErr
}

type stubCatalogService struct {
	products []domain.Product
	filter   productrepo.ListFilter
	err      error
}

func (s *stubCatalogService) ListProducts(_ context.Context, f productrepo.ListFilter) ([]domain.Product, error) {
	s.filter = f
	return s.products, s.err
}

func (s *stubCatalogService) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubCatalogService) ListCategories(context.Context) ([]domain.Category, error) {
	return nil, s.err
}

func (s *stubCatalogService) GetCategory(context.Context, string) (*domain.Category, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCatalogService) SaveProduct(_ context.Context, p domain.Principal, in catalogsvc.ProductInput) (*domain.Product, error) {
	if !domain.IsPrivileged(p) {
		return nil, domain.ErrPermissionDenied
	}
	return &domain.Product{ID: testProduct, Name: in.Name, PriceCents: 100}, nil
}

func (s *stubCatalogService) SetStock(_ context.Context, _ domain.Principal, id string, qty int) (*domain.Product, error) {
	return &domain.Product{ID: id, Quantity: qty, IsAvailable: qty > 0}, s.err
}

type stubCartService struct {
	cart    *domain.Cart
	line    *domain.CartLine
	err     error
	lastAdd cartsvc.AddItemInput
}

func (s *stubCartService) Get(context.Context, string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, _ string, in cartsvc.AddItemInput) (*domain.CartLine, error) {
	s.lastAdd = in
	return s.line, s.err
}

func (s *stubCartService) UpdateQuantity(context.Context, domain.Principal, string, int) (*domain.CartLine, error) {
	return s.line, s.err
}

func (s *stubCartService) RemoveItem(context.Context, domain.Principal, string) error {
	return s.err
}

func (s *stubCartService) Clear(context.Context, string) error {
	return s.err
}

type stubOrderService struct {
	order *domain.Order
	err   error
}

func (s *stubOrderService) Place(context.Context, string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) List(context.Context, domain.Principal) ([]domain.Order, error) {
	if s.order == nil {
		return nil, s.err
	}
	return []domain.Order{*s.order}, s.err
}

func (s *stubOrderService) Get(context.Context, domain.Principal, string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) UpdateStatus(context.Context, domain.Principal, string, string) (*domain.Order, error) {
	return s.order, s.err
}

type stubReviewService struct {
	review *domain.Review
	err    error
}

func (s *stubReviewService) Submit(context.Context, string, reviewsvc.SubmitInput) (*domain.Review, error) {
	return s.review, s.err
}

func (s *stubReviewService) ListByProduct(context.Context, string) ([]domain.Review, error) {
	return nil, s.err
}

func defaultDeps() Deps {
	return Deps{
		UserSvc: &stubUserService{
			principal: domain.Principal{UserID: testUserID},
			user:      &domain.User{ID: testUserID, Email: "user@example.com", IsActive: true},
		},
		CatalogSvc: &stubCatalogService{},
		CartSvc:    &stubCartService{},
		OrderSvc:   &stubOrderService{},
		ReviewSvc:  &stubReviewService{},
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps, Options{})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func do(router http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

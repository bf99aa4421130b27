package user

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Repository persists and fetches users along with their wallet and referral records.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	GetReferralCode(ctx context.Context, userID string) (*domain.ReferralCode, error)
	CountReferrals(ctx context.Context, referrerID string) (int, error)

	// WithinTx runs fn in one transaction; any error rolls back every write made through tx.
	WithinTx(ctx context.Context, fn func(tx RegistrationTx) error) error
}

// RegistrationTx is the set of writes that make up a user registration.
type RegistrationTx interface {
	CreateUser(ctx context.Context, u domain.User) (*domain.User, error)
	CreateWallet(ctx context.Context, userID string) error
	// CreateReferralCode returns domain.ErrAlreadyExists when code is taken.
	CreateReferralCode(ctx context.Context, userID, code string) error
	FindReferralCode(ctx context.Context, code string) (*domain.ReferralCode, error)
	// CreateReferral returns domain.ErrAlreadyExists when referredTo was already referred.
	CreateReferral(ctx context.Context, referredBy, referredTo string) (*domain.Referral, error)
	CreditWallet(ctx context.Context, userID string, amount decimal.Decimal) error
}

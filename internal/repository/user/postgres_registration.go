package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"storefront/internal/db"
	"storefront/internal/domain"
)

type registrationTx struct {
	q db.Querier
}

func (t *registrationTx) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (email, password_hash, first_name, last_name, is_active, is_staff, is_superuser)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns
	return scanUser(t.q.QueryRow(ctx, q,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.IsActive,
		u.IsStaff,
		u.IsSuperuser,
	))
}

func (t *registrationTx) CreateWallet(ctx context.Context, userID string) error {
	_, err := t.q.Exec(ctx, `INSERT INTO wallets (user_id, credits) VALUES ($1, 0)`, userID)
	if db.IsUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (t *registrationTx) CreateReferralCode(ctx context.Context, userID, code string) error {
	// ON CONFLICT keeps a code collision from aborting the surrounding transaction.
	cmd, err := t.q.Exec(ctx, `
INSERT INTO referral_codes (user_id, code)
VALUES ($1, $2)
ON CONFLICT (code) DO NOTHING
`, userID, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (t *registrationTx) FindReferralCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	var rc domain.ReferralCode
	err := t.q.QueryRow(ctx, `SELECT user_id::text, code FROM referral_codes WHERE code = $1`, code).Scan(&rc.UserID, &rc.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rc, nil
}

func (t *registrationTx) CreateReferral(ctx context.Context, referredBy, referredTo string) (*domain.Referral, error) {
	var ref domain.Referral
	err := t.q.QueryRow(ctx, `
INSERT INTO referrals (referred_by_id, referred_to_id)
VALUES ($1, $2)
ON CONFLICT (referred_to_id) DO NOTHING
RETURNING id::text, referred_by_id::text, referred_to_id::text, created_at
`, referredBy, referredTo).Scan(&ref.ID, &ref.ReferredByID, &ref.ReferredToID, &ref.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &ref, nil
}

func (t *registrationTx) CreditWallet(ctx context.Context, userID string, amount decimal.Decimal) error {
	cmd, err := t.q.Exec(ctx, `UPDATE wallets SET credits = credits + $2::numeric WHERE user_id = $1`, userID, amount.String())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

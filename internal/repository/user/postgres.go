package user

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/db"
	"storefront/internal/domain"
)

const userColumns = `id::text, email, password_hash, first_name, last_name, is_active, is_staff, is_superuser, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) LIMIT 1`
	return scanUser(r.pool.QueryRow(ctx, q, strings.TrimSpace(email)))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email ASC`)
	if err != nil {
		r.logger.Printf("user repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	return result, rows.Err()
}

func (r *postgresRepo) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	var (
		w       domain.Wallet
		credits string
	)
	err := r.pool.QueryRow(ctx, `SELECT user_id::text, credits::text FROM wallets WHERE user_id = $1`, userID).Scan(&w.UserID, &credits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	w.Credits, err = decimal.NewFromString(credits)
	if err != nil {
		r.logger.Printf("user repo: decode credits user_id=%s value=%q err=%v", userID, credits, err)
		return nil, err
	}
	return &w, nil
}

func (r *postgresRepo) GetReferralCode(ctx context.Context, userID string) (*domain.ReferralCode, error) {
	var rc domain.ReferralCode
	err := r.pool.QueryRow(ctx, `SELECT user_id::text, code FROM referral_codes WHERE user_id = $1`, userID).Scan(&rc.UserID, &rc.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rc, nil
}

func (r *postgresRepo) CountReferrals(ctx context.Context, referrerID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM referrals WHERE referred_by_id = $1`, referrerID).Scan(&n)
	return n, err
}

func (r *postgresRepo) WithinTx(ctx context.Context, fn func(tx RegistrationTx) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&registrationTx{q: tx})
	})
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.IsActive,
		&u.IsStaff,
		&u.IsSuperuser,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &u, nil
}

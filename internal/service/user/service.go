// Package user handles registration, authentication and the referral program.
package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/mail"
	"storefront/internal/metrics"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
)

// Config carries the tunables of the user service.
type Config struct {
	JWTSecret     []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ReferralBonus decimal.Decimal
	RegisterURL   string
}

type Service struct {
	repo        userrepo.Repository
	tokens      *tokenManager
	mail        mail.Sender
	bonus       decimal.Decimal
	registerURL string
	passwordMin int
	newCode     func() (string, error)
	logger      *log.Logger
}

func New(repo userrepo.Repository, tokens tokenrepo.Repository, sender mail.Sender, cfg Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens, cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL),
		mail:        sender,
		bonus:       cfg.ReferralBonus,
		registerURL: cfg.RegisterURL,
		passwordMin: 8,
		newCode:     randomReferralCode,
		logger:      logger,
	}
}

// RegisterInput captures fields expected by the registration endpoint.
type RegisterInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ReferralCode string `json:"referral_code"`
}

// TokenPair is returned on login.
type TokenPair struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ExpiresIn int    `json:"expires_in"`
}

// Register creates the user together with its wallet and referral code.
// A non-blank referral code must resolve, and both wallets are credited
// with the referral bonus in the same transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("email", "a valid email address is required")
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.ReferralCode)

	var created *domain.User
	err = s.repo.WithinTx(ctx, func(tx userrepo.RegistrationTx) error {
		u, err := tx.CreateUser(ctx, domain.User{
			Email:        email,
			PasswordHash: string(hashed),
			FirstName:    strings.TrimSpace(in.FirstName),
			LastName:     strings.TrimSpace(in.LastName),
			IsActive:     true,
		})
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return domain.Invalid("email", "user with this email already exists")
			}
			return err
		}
		if err := tx.CreateWallet(ctx, u.ID); err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}
		if err := s.issueReferralCode(ctx, tx, u.ID); err != nil {
			return err
		}
		if code != "" {
			if err := s.applyReferral(ctx, tx, code, u.ID); err != nil {
				return err
			}
		}
		created = u
		return nil
	})
	if err != nil {
		s.logger.Printf("user service: register email=%s error=%v", email, err)
		return nil, err
	}
	if code != "" {
		metrics.ReferralBonuses.Inc()
	}
	s.logger.Printf("user service: registered id=%s referred=%t", created.ID, code != "")
	return created, nil
}

// Login validates credentials and returns issued tokens plus the user.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	password = strings.TrimSpace(password)
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, TokenPair{}, domain.ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if !u.IsActive {
		return nil, TokenPair{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, domain.ErrInvalidCredentials
	}
	pair, err := s.issuePair(ctx, *u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Logout revokes both the presented access token and its refresh token.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := s.tokens.ParseAccess(ctx, accessToken)
	if err != nil {
		return err
	}
	meta, err := s.tokens.ValidateRefresh(ctx, strings.TrimSpace(refreshToken))
	if err != nil {
		return err
	}
	if meta.UserID != claims.Subject {
		return domain.ErrInvalidToken
	}
	if err := s.tokens.repo.Delete(ctx, meta.Token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return s.tokens.Revoke(ctx, claims)
}

// Refresh exchanges a refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	meta, err := s.tokens.ValidateRefresh(ctx, strings.TrimSpace(refreshToken))
	if err != nil {
		return "", err
	}
	u, err := s.activeUser(ctx, meta.UserID)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueAccess(*u)
}

// Verify reports whether an access token is currently valid.
func (s *Service) Verify(ctx context.Context, accessToken string) error {
	_, err := s.tokens.ParseAccess(ctx, accessToken)
	return err
}

// Authenticate resolves a bearer token to the calling principal. Flags are
// read from storage so demoted or deactivated users lose access immediately.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (domain.Principal, error) {
	claims, err := s.tokens.ParseAccess(ctx, accessToken)
	if err != nil {
		return domain.Principal{}, err
	}
	u, err := s.activeUser(ctx, claims.Subject)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.PrincipalFor(*u), nil
}

// ListUsers is restricted to superusers.
func (s *Service) ListUsers(ctx context.Context, p domain.Principal) ([]domain.User, error) {
	if !p.IsSuperuser {
		return nil, domain.ErrPermissionDenied
	}
	return s.repo.List(ctx)
}

// PurgeExpiredTokens drops refresh tokens and revocations past their expiry.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokens.PurgeExpired(ctx)
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.tokens.accessTTL.Seconds())
}

func (s *Service) issuePair(ctx context.Context, u domain.User) (TokenPair, error) {
	access, err := s.tokens.IssueAccess(u)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefresh(ctx, u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh, ExpiresIn: s.AccessTTLSeconds()}, nil
}

func (s *Service) activeUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, domain.ErrInvalidToken
	}
	return u, nil
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return domain.Invalid("password", "must be at least %d characters", min)
	}
	hasLetter := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return domain.Invalid("password", "must contain at least one letter and one number")
	}
	return nil
}

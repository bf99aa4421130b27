package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

// accessClaims are carried by signed access tokens.
type accessClaims struct {
	jwt.RegisteredClaims
	Staff     bool `json:"staff,omitempty"`
	Superuser bool `json:"superuser,omitempty"`
}

// tokenManager signs stateless access tokens and persists opaque refresh
// tokens. Revoked access tokens are remembered by id until they expire.
type tokenManager struct {
	repo       tokenrepo.Repository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func newTokenManager(repo tokenrepo.Repository, secret []byte, accessTTL, refreshTTL time.Duration) *tokenManager {
	return &tokenManager{
		repo:       repo,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *tokenManager) IssueAccess(u domain.User) (string, error) {
	now := m.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
		Staff:     u.IsStaff,
		Superuser: u.IsSuperuser,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *tokenManager) IssueRefresh(ctx context.Context, userID string) (string, error) {
	expiresAt := m.now().Add(m.refreshTTL)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", err
		}
		err = m.repo.Create(ctx, tokenrepo.Token{
			Token:     token,
			UserID:    userID,
			Kind:      tokenrepo.KindRefresh,
			ExpiresAt: expiresAt,
		})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", err
	}
	return "", errors.New("token collision")
}

// ParseAccess validates signature, expiry and revocation of an access token.
func (m *tokenManager) ParseAccess(ctx context.Context, raw string) (*accessClaims, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrInvalidToken
	}
	revoked, err := m.repo.Get(ctx, claims.ID)
	switch {
	case err == nil && revoked.Kind == tokenrepo.KindRevoked:
		return nil, fmt.Errorf("%w: revoked", domain.ErrInvalidToken)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	return claims, nil
}

// ValidateRefresh returns the stored refresh token, discarding it when expired.
func (m *tokenManager) ValidateRefresh(ctx context.Context, raw string) (*tokenrepo.Token, error) {
	meta, err := m.repo.Get(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if meta.Kind != tokenrepo.KindRefresh || meta.UserID == "" {
		return nil, domain.ErrInvalidToken
	}
	if m.now().After(meta.ExpiresAt) {
		_ = m.repo.Delete(ctx, raw)
		return nil, domain.ErrInvalidToken
	}
	return meta, nil
}

// Revoke blacklists the access token described by claims.
func (m *tokenManager) Revoke(ctx context.Context, claims *accessClaims) error {
	expiresAt := m.now().Add(m.accessTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	err := m.repo.Create(ctx, tokenrepo.Token{
		Token:     claims.ID,
		UserID:    claims.Subject,
		Kind:      tokenrepo.KindRevoked,
		ExpiresAt: expiresAt,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil
	}
	return err
}

func (m *tokenManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx, m.now())
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	userrepo "storefront/internal/repository/user"
)

const (
	referralSubject   = "Referral Code to Signup"
	referralBodyFmt   = "Please register to %s using the code <strong>%s</strong>"
	referralCodeBytes = 5
	referralAttempts  = 5
)

// ReferralSummary is what a user sees about their own referral standing.
type ReferralSummary struct {
	Code      string          `json:"referral_code"`
	Credits   decimal.Decimal `json:"credits"`
	Referrals int             `json:"referrals"`
}

func (s *Service) Referral(ctx context.Context, userID string) (*ReferralSummary, error) {
	code, err := s.repo.GetReferralCode(ctx, userID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountReferrals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ReferralSummary{Code: code.Code, Credits: wallet.Credits, Referrals: count}, nil
}

// ShareReferral mails the caller's referral code to recipient. Delivery
// failures are returned wrapped in domain.ErrEmailDelivery.
func (s *Service) ShareReferral(ctx context.Context, userID, recipient string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(recipient))
	if err != nil {
		return domain.Invalid("email", "a valid email address is required")
	}
	code, err := s.repo.GetReferralCode(ctx, userID)
	if err != nil {
		return err
	}
	if s.mail == nil {
		return fmt.Errorf("%w: no mail sender configured", domain.ErrEmailDelivery)
	}
	body := fmt.Sprintf(referralBodyFmt, s.registerURL, code.Code)
	if err := s.mail.Send(ctx, addr.Address, referralSubject, body); err != nil {
		metrics.MailDeliveries.WithLabelValues("failed").Inc()
		s.logger.Printf("user service: share referral user=%s to=%s error=%v", userID, addr.Address, err)
		return fmt.Errorf("%w: %v", domain.ErrEmailDelivery, err)
	}
	metrics.MailDeliveries.WithLabelValues("sent").Inc()
	return nil
}

// issueReferralCode stores a fresh random code for userID, retrying on collision.
func (s *Service) issueReferralCode(ctx context.Context, tx userrepo.RegistrationTx, userID string) error {
	for i := 0; i < referralAttempts; i++ {
		code, err := s.newCode()
		if err != nil {
			return err
		}
		err = tx.CreateReferralCode(ctx, userID, code)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return fmt.Errorf("create referral code: %w", err)
	}
	return errors.New("referral code collision")
}

func (s *Service) applyReferral(ctx context.Context, tx userrepo.RegistrationTx, code, newUserID string) error {
	owner, err := tx.FindReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidReferralCode
		}
		return err
	}
	if owner.UserID == newUserID {
		return domain.ErrInvalidReferralCode
	}
	if _, err := tx.CreateReferral(ctx, owner.UserID, newUserID); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.ErrDuplicateReferral
		}
		return err
	}
	for _, id := range []string{owner.UserID, newUserID} {
		if err := tx.CreditWallet(ctx, id, s.bonus); err != nil {
			return fmt.Errorf("credit wallet %s: %w", id, err)
		}
	}
	return nil
}

func randomReferralCode() (string, error) {
	b := make([]byte, referralCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

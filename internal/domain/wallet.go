package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's store credits.
type Wallet struct {
	UserID  string          `json:"userId"`
	Credits decimal.Decimal `json:"credits"`
}

// ReferralCode is issued once per user at registration.
type ReferralCode struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

// Referral links a referrer to the user they brought in. A user is referred at most once.
type Referral struct {
	ID           string    `json:"id"`
	ReferredByID string    `json:"referredBy"`
	ReferredToID string    `json:"referredTo"`
	CreatedAt    time.Time `json:"createdAt"`
}

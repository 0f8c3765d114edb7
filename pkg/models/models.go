package models

import (
	"time"
)

// MaxDirectRecruits is the hard cap on how many participants a single sponsor
// may recruit directly.
const MaxDirectRecruits = 8

// MaxNetworkDepth is the deepest level at which new participants may be
// enrolled (root = 0). This caps network construction and is independent of
// how far up the chain commissions are paid.
const MaxNetworkDepth = 2

// MinQualifyingAmount is the purchase amount, in cents, at or above which a
// purchase qualifies for commission distribution.
const MinQualifyingAmount int64 = 100_000

// Commission rates by level, in whole percent.
const (
	Level1RatePercent int64 = 5
	Level2RatePercent int64 = 1
)

// CommissionAmount returns the commission owed to the ancestor at the given
// level for a purchase of the given amount. Division truncates toward zero.
func CommissionAmount(purchaseAmount int64, level int) int64 {
	switch level {
	case 1:
		return purchaseAmount * Level1RatePercent / 100
	case 2:
		return purchaseAmount * Level2RatePercent / 100
	default:
		return 0
	}
}

// Participant represents an enrolled member of the referral network.
// It includes dynamodbav tags for marshalling.
type Participant struct {
	Id            string    `dynamodbav:"id"`
	Name          string    `dynamodbav:"name"`
	Email         string    `dynamodbav:"email"`
	ReferralCode  string    `dynamodbav:"referral_code"`
	SponsorCode   string    `dynamodbav:"sponsor_code,omitempty"`
	Level         int       `dynamodbav:"level"`
	Recruits      []string  `dynamodbav:"recruits"`
	WalletBalance int64     `dynamodbav:"wallet_balance"`
	Active        bool      `dynamodbav:"active"`
	Version       int64     `dynamodbav:"version"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
}

// Purchase represents a single purchase made by a participant. Purchases are
// immutable once created; whether one qualifies for distribution is fixed at
// creation time.
type Purchase struct {
	Id          string    `dynamodbav:"id"`
	BuyerId     string    `dynamodbav:"buyer_id"`
	Amount      int64     `dynamodbav:"amount"`
	Description string    `dynamodbav:"description"`
	Qualifies   bool      `dynamodbav:"qualifies"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
}

// Earning is a single append-only commission ledger entry. Exactly one entry
// may exist per (purchase, payee) pair; DistributionKey is the composite key
// that enforces this.
type Earning struct {
	Id              string    `dynamodbav:"id"`
	DistributionKey string    `dynamodbav:"distribution_key"`
	PayeeId         string    `dynamodbav:"payee_id"`
	PayerId         string    `dynamodbav:"payer_id"`
	PurchaseId      string    `dynamodbav:"purchase_id"`
	Amount          int64     `dynamodbav:"amount"`
	Level           int       `dynamodbav:"level"`
	CreatedAt       time.Time `dynamodbav:"created_at"`
}

// EarningDistributionKey builds the composite uniqueness key for an earning.
func EarningDistributionKey(purchaseID, payeeID string) string {
	return purchaseID + "#" + payeeID
}

// LevelSummary aggregates a payee's earnings at one commission level.
type LevelSummary struct {
	Total int64
	Count int
}

// EarningEvent is the payload emitted to the notification sink after each
// committed payout. Delivery is best effort and never affects ledger state.
type EarningEvent struct {
	PayeeId          string    `json:"payee_id"`
	Amount           int64     `json:"amount"`
	PayerDisplayName string    `json:"payer_display_name"`
	Level            int       `json:"level"`
	Timestamp        time.Time `json:"timestamp"`
}

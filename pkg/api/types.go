// Package api holds the wire types for the HTTP surface. Amounts are in
// cents, like the domain models.
package api

import "time"

// NewParticipant is the enrollment request body.
type NewParticipant struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	SponsorCode string `json:"sponsor_code,omitempty"`
}

// Participant is the public view of a participant.
type Participant struct {
	Id            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ReferralCode  string    `json:"referral_code"`
	SponsorCode   string    `json:"sponsor_code,omitempty"`
	Level         int       `json:"level"`
	Recruits      []string  `json:"recruits"`
	WalletBalance int64     `json:"wallet_balance"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewPurchase is the purchase creation request body.
type NewPurchase struct {
	BuyerId     string `json:"buyer_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
}

// Purchase is the public view of a purchase.
type Purchase struct {
	Id          string    `json:"id"`
	BuyerId     string    `json:"buyer_id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Qualifies   bool      `json:"qualifies"`
	CreatedAt   time.Time `json:"created_at"`
}

// Earning is the public view of a ledger entry.
type Earning struct {
	Id         string    `json:"id"`
	PayeeId    string    `json:"payee_id"`
	PayerId    string    `json:"payer_id"`
	PurchaseId string    `json:"purchase_id"`
	Amount     int64     `json:"amount"`
	Level      int       `json:"level"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecentEarning is an earning annotated with payer details for reports.
type RecentEarning struct {
	Earning
	PayerName  string `json:"payer_name"`
	PayerEmail string `json:"payer_email"`
}

// LevelSummary aggregates one commission level in an earnings summary.
type LevelSummary struct {
	Total int64 `json:"total"`
	Count int   `json:"count"`
}

// EarningsSummary is the earnings report for one participant.
type EarningsSummary struct {
	TotalEarnings   int64                   `json:"total_earnings"`
	EarningsByLevel map[string]LevelSummary `json:"earnings_by_level"`
	RecentEarnings  []RecentEarning         `json:"recent_earnings"`
}

// ReferralTree is the direct/indirect recruit listing for one participant.
type ReferralTree struct {
	Direct        []Participant `json:"direct"`
	Indirect      []Participant `json:"indirect"`
	TotalDirect   int           `json:"total_direct"`
	TotalIndirect int           `json:"total_indirect"`
}

// ReferralEarnings reports what one direct recruit has generated for the
// participant.
type ReferralEarnings struct {
	Referral      Participant `json:"referral"`
	TotalEarned   int64       `json:"total_earned"`
	EarningsCount int         `json:"earnings_count"`
}

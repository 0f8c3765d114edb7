package storage

import (
	"context"

	"github.com/chris/referral-earnings/pkg/models"
)

// LedgerWriter defines the privileged interface for appending commission
// entries. The distribution engine is its only caller.
type LedgerWriter interface {
	// AppendEarning inserts the entry and credits the payee's wallet balance
	// as one atomic unit. Both effects commit together or not at all.
	// Returns ErrDuplicateEarning if an entry for the same (purchase, payee)
	// pair already exists; in that case neither effect is applied.
	AppendEarning(ctx context.Context, earning *models.Earning) error
}

// LedgerReader defines the interface for reading ledger data.
type LedgerReader interface {
	// ListEarningsByPayee retrieves all entries paid to a participant.
	ListEarningsByPayee(ctx context.Context, payeeID string) ([]models.Earning, error)

	// ListEarningsByPayer retrieves all entries generated by a participant's
	// purchases.
	ListEarningsByPayer(ctx context.Context, payerID string) ([]models.Earning, error)

	// ListRecentEarnings retrieves the most recent ledger entries.
	ListRecentEarnings(ctx context.Context, limit int32) ([]models.Earning, error)

	// SumEarningsByLevel aggregates a payee's entries into per-level totals
	// and counts.
	SumEarningsByLevel(ctx context.Context, payeeID string) (map[int]models.LevelSummary, error)
}

// LedgerStore combines the reader and writer interfaces.
type LedgerStore interface {
	LedgerWriter
	LedgerReader
}

// Package distribution implements the earnings distribution engine: the sole
// writer of ledger entries and wallet credits triggered by purchases.
package distribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/referral-earnings/pkg/events"
	"github.com/chris/referral-earnings/pkg/models"
	"github.com/chris/referral-earnings/pkg/referral"
	"github.com/chris/referral-earnings/pkg/storage"
	"github.com/google/uuid"
)

// Engine walks a buyer's sponsor chain and pays commission to each qualifying
// ancestor.
type Engine struct {
	directory *referral.Directory
	ledger    storage.LedgerWriter
	emitter   events.Emitter
}

// NewEngine creates an Engine. The emitter may be events.NoOpEmitter{} when
// no notification pipeline is wired.
func NewEngine(directory *referral.Directory, ledger storage.LedgerWriter, emitter events.Emitter) *Engine {
	return &Engine{
		directory: directory,
		ledger:    ledger,
		emitter:   emitter,
	}
}

// Distribute pays commission for one qualifying purchase: 5% of the amount to
// the buyer's direct sponsor and 1% to the grand-sponsor, when they exist.
// Each payout is one atomic ledger-append-plus-wallet-credit; a failure or
// duplicate on one payee never touches another payee's payout, so a retried
// call settles exactly the entries the first call missed and no more.
//
// A non-qualifying purchase is a normal outcome: no entries, no error. The
// returned slice holds only entries committed by this call.
func (e *Engine) Distribute(ctx context.Context, purchase *models.Purchase) ([]models.Earning, error) {
	if !purchase.Qualifies {
		return nil, nil
	}

	chain, err := e.directory.ResolveChain(ctx, purchase.BuyerId)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sponsor chain for buyer %s: %w", purchase.BuyerId, err)
	}
	if len(chain) == 0 {
		return nil, nil
	}

	buyerName := e.buyerDisplayName(ctx, purchase.BuyerId)

	var committed []models.Earning
	var payoutErrs []error
	for i, ancestor := range chain {
		level := i + 1
		earning := models.Earning{
			Id:              uuid.New().String(),
			DistributionKey: models.EarningDistributionKey(purchase.Id, ancestor.Id),
			PayeeId:         ancestor.Id,
			PayerId:         purchase.BuyerId,
			PurchaseId:      purchase.Id,
			Amount:          models.CommissionAmount(purchase.Amount, level),
			Level:           level,
			CreatedAt:       time.Now(),
		}

		err := e.ledger.AppendEarning(ctx, &earning)
		if errors.Is(err, storage.ErrDuplicateEarning) {
			// This payee was already paid for this purchase; a retried
			// request lands here and is a no-op.
			slog.Info("duplicate distribution absorbed",
				"purchase_id", purchase.Id, "payee_id", ancestor.Id, "level", level)
			continue
		}
		if err != nil {
			// Abort this payee's payout only. Already-committed payouts are
			// durable and the remaining ancestors still get their attempt.
			payoutErrs = append(payoutErrs, fmt.Errorf("level %d payout to %s: %w", level, ancestor.Id, err))
			continue
		}

		committed = append(committed, earning)
		e.notify(ctx, &earning, buyerName)
	}

	return committed, errors.Join(payoutErrs...)
}

// notify emits one earning event. Sink failures are logged and swallowed;
// they never affect ledger or wallet state.
func (e *Engine) notify(ctx context.Context, earning *models.Earning, buyerName string) {
	event := &models.EarningEvent{
		PayeeId:          earning.PayeeId,
		Amount:           earning.Amount,
		PayerDisplayName: buyerName,
		Level:            earning.Level,
		Timestamp:        earning.CreatedAt,
	}
	if err := e.emitter.EmitEarning(ctx, event); err != nil {
		slog.Error("failed to emit earning event",
			"payee_id", earning.PayeeId, "purchase_id", earning.PurchaseId, "error", err)
	}
}

func (e *Engine) buyerDisplayName(ctx context.Context, buyerID string) string {
	buyer, err := e.directory.GetParticipant(ctx, buyerID)
	if err != nil {
		slog.Warn("failed to load buyer for display name", "buyer_id", buyerID, "error", err)
		return "Unknown"
	}
	return buyer.Name
}

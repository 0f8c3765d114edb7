package storage

import (
	"context"

	"github.com/chris/referral-earnings/pkg/models"
)

// PurchaseStore defines the interface for recording and reading purchases.
type PurchaseStore interface {
	// CreatePurchase persists a new purchase record.
	CreatePurchase(ctx context.Context, purchase *models.Purchase) error

	// GetPurchase retrieves a purchase by its ID.
	GetPurchase(ctx context.Context, purchaseID string) (*models.Purchase, error)

	// ListPurchasesByBuyer retrieves all purchases made by a participant.
	ListPurchasesByBuyer(ctx context.Context, buyerID string) ([]models.Purchase, error)
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/chris/referral-earnings/pkg/api"
	"github.com/chris/referral-earnings/pkg/mapping"
	"github.com/chris/referral-earnings/pkg/models"
	"github.com/chris/referral-earnings/pkg/storage"
	"github.com/google/uuid"
)

// CreatePurchase handles the logic for recording a purchase. A qualifying
// purchase synchronously triggers commission distribution; a purchase below
// the threshold is recorded and simply produces no ledger entries.
func (h *ApiHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var newPurchase api.NewPurchase
	if err := json.NewDecoder(r.Body).Decode(&newPurchase); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if newPurchase.Amount <= 0 {
		http.Error(w, "Invalid purchase amount", http.StatusBadRequest)
		return
	}

	if _, err := h.Store.GetParticipant(r.Context(), newPurchase.BuyerId); err != nil {
		if errors.Is(err, storage.ErrParticipantNotFound) {
			http.Error(w, "Buyer not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to resolve buyer: %v", err), http.StatusInternalServerError)
		}
		return
	}

	description := newPurchase.Description
	if description == "" {
		description = "Purchase"
	}

	purchase := &models.Purchase{
		Id:          uuid.New().String(),
		BuyerId:     newPurchase.BuyerId,
		Amount:      newPurchase.Amount,
		Description: description,
		Qualifies:   newPurchase.Amount >= models.MinQualifyingAmount,
		CreatedAt:   time.Now(),
	}

	if err := h.Store.CreatePurchase(r.Context(), purchase); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create purchase: %v", err), http.StatusInternalServerError)
		return
	}

	if purchase.Qualifies {
		earnings, err := h.Engine.Distribute(r.Context(), purchase)
		if err != nil {
			// The purchase and any committed payouts are durable; the failed
			// payouts will settle on a retried distribution.
			slog.Error("distribution incomplete",
				"purchase_id", purchase.Id, "committed", len(earnings), "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, mapping.ToApiPurchase(purchase))
}

// ListPurchases handles the logic for retrieving a participant's purchases.
func (h *ApiHandler) ListPurchases(w http.ResponseWriter, r *http.Request, participantID string) {
	purchases, err := h.Store.ListPurchasesByBuyer(r.Context(), participantID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve purchases: %v", err), http.StatusInternalServerError)
		return
	}

	apiPurchases := make([]*api.Purchase, len(purchases))
	for i, purchase := range purchases {
		apiPurchases[i] = mapping.ToApiPurchase(&purchase)
	}

	writeJSON(w, http.StatusOK, apiPurchases)
}

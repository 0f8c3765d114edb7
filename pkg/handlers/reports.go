package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/chris/referral-earnings/pkg/api"
	"github.com/chris/referral-earnings/pkg/mapping"
	"github.com/chris/referral-earnings/pkg/storage"
)

const recentEarningsLimit = 10

// GetEarningsSummary handles the earnings report for one participant: total,
// per-level breakdown, and the most recent entries with payer details. Pure
// read over committed ledger state.
func (h *ApiHandler) GetEarningsSummary(w http.ResponseWriter, r *http.Request, participantID string) {
	earnings, err := h.Store.ListEarningsByPayee(r.Context(), participantID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve earnings: %v", err), http.StatusInternalServerError)
		return
	}

	summary := api.EarningsSummary{
		EarningsByLevel: make(map[string]api.LevelSummary),
		RecentEarnings:  []api.RecentEarning{},
	}
	for _, earning := range earnings {
		summary.TotalEarnings += earning.Amount
		key := "level" + strconv.Itoa(earning.Level)
		levelSummary := summary.EarningsByLevel[key]
		levelSummary.Total += earning.Amount
		levelSummary.Count++
		summary.EarningsByLevel[key] = levelSummary
	}

	sort.Slice(earnings, func(i, j int) bool {
		return earnings[i].CreatedAt.After(earnings[j].CreatedAt)
	})
	if len(earnings) > recentEarningsLimit {
		earnings = earnings[:recentEarningsLimit]
	}

	for _, earning := range earnings {
		recent := api.RecentEarning{Earning: *mapping.ToApiEarning(&earning)}
		payer, err := h.Store.GetParticipant(r.Context(), earning.PayerId)
		if err != nil {
			recent.PayerName = "Unknown"
			recent.PayerEmail = "Unknown"
		} else {
			recent.PayerName = payer.Name
			recent.PayerEmail = payer.Email
		}
		summary.RecentEarnings = append(summary.RecentEarnings, recent)
	}

	writeJSON(w, http.StatusOK, summary)
}

// GetReferralEarnings handles the per-recruit earnings report: for each
// direct recruit, the total that recruit's purchases have paid the
// participant.
func (h *ApiHandler) GetReferralEarnings(w http.ResponseWriter, r *http.Request, participantID string) {
	direct, err := h.Directory.ListDirect(r.Context(), participantID)
	if err != nil {
		if errors.Is(err, storage.ErrParticipantNotFound) {
			http.Error(w, "Participant not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve referrals: %v", err), http.StatusInternalServerError)
		}
		return
	}

	earnings, err := h.Store.ListEarningsByPayee(r.Context(), participantID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve earnings: %v", err), http.StatusInternalServerError)
		return
	}

	report := make([]api.ReferralEarnings, 0, len(direct))
	for _, recruit := range direct {
		entry := api.ReferralEarnings{Referral: *mapping.ToApiParticipant(&recruit)}
		for _, earning := range earnings {
			if earning.PayerId == recruit.Id {
				entry.TotalEarned += earning.Amount
				entry.EarningsCount++
			}
		}
		report = append(report, entry)
	}

	writeJSON(w, http.StatusOK, report)
}

// ListRecentLedgerEntries handles the logic for retrieving the most recent
// ledger entries across all participants.
func (h *ApiHandler) ListRecentLedgerEntries(w http.ResponseWriter, r *http.Request) {
	limit := int32(20)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = int32(parsed)
	}

	earnings, err := h.Store.ListRecentEarnings(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve ledger entries: %v", err), http.StatusInternalServerError)
		return
	}

	apiEarnings := make([]*api.Earning, len(earnings))
	for i, earning := range earnings {
		apiEarnings[i] = mapping.ToApiEarning(&earning)
	}

	writeJSON(w, http.StatusOK, apiEarnings)
}

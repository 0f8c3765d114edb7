package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the API surface on the router.
func (h *ApiHandler) RegisterRoutes(r chi.Router) {
	r.Post("/participants", h.EnrollParticipant)
	r.Get("/participants", h.ListParticipants)
	r.Get("/participants/{participantId}", withParticipantID(h.GetParticipant))
	r.Get("/participants/{participantId}/referrals", withParticipantID(h.GetReferralTree))
	r.Get("/participants/{participantId}/purchases", withParticipantID(h.ListPurchases))
	r.Get("/participants/{participantId}/earnings", withParticipantID(h.GetEarningsSummary))
	r.Get("/participants/{participantId}/referral-earnings", withParticipantID(h.GetReferralEarnings))
	r.Post("/purchases", h.CreatePurchase)
	r.Get("/ledger", h.ListRecentLedgerEntries)
}

func withParticipantID(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r, chi.URLParam(r, "participantId"))
	}
}

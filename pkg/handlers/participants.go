package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/chris/referral-earnings/pkg/api"
	"github.com/chris/referral-earnings/pkg/mapping"
	"github.com/chris/referral-earnings/pkg/referral"
	"github.com/chris/referral-earnings/pkg/storage"
)

// EnrollParticipant handles the logic for enrolling a new participant,
// optionally under a sponsor's referral code.
func (h *ApiHandler) EnrollParticipant(w http.ResponseWriter, r *http.Request) {
	var newParticipant api.NewParticipant
	if err := json.NewDecoder(r.Body).Decode(&newParticipant); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if newParticipant.Name == "" || newParticipant.Email == "" {
		http.Error(w, "Name and email are required", http.StatusBadRequest)
		return
	}

	participant, err := h.Directory.Enroll(r.Context(), referral.Enrollment{
		Name:        newParticipant.Name,
		Email:       newParticipant.Email,
		SponsorCode: newParticipant.SponsorCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidReferral):
			http.Error(w, "Invalid referral code", http.StatusBadRequest)
		case errors.Is(err, storage.ErrReferralCapacityExceeded):
			http.Error(w, "Sponsor has reached the maximum referral limit", http.StatusUnprocessableEntity)
		case errors.Is(err, storage.ErrDepthExceeded):
			http.Error(w, "Maximum referral depth reached", http.StatusUnprocessableEntity)
		default:
			http.Error(w, fmt.Sprintf("Failed to enroll participant: %v", err), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, mapping.ToApiParticipant(participant))
}

// GetParticipant handles the logic for retrieving a participant's profile.
func (h *ApiHandler) GetParticipant(w http.ResponseWriter, r *http.Request, participantID string) {
	participant, err := h.Store.GetParticipant(r.Context(), participantID)
	if err != nil {
		if errors.Is(err, storage.ErrParticipantNotFound) {
			http.Error(w, "Participant not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve participant: %v", err), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, mapping.ToApiParticipant(participant))
}

// ListParticipants handles the logic for retrieving all participants.
func (h *ApiHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.Store.ListParticipants(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve participants: %v", err), http.StatusInternalServerError)
		return
	}

	apiParticipants := make([]*api.Participant, len(participants))
	for i, participant := range participants {
		apiParticipants[i] = mapping.ToApiParticipant(&participant)
	}

	writeJSON(w, http.StatusOK, apiParticipants)
}

// GetReferralTree handles the logic for retrieving a participant's direct and
// indirect recruits.
func (h *ApiHandler) GetReferralTree(w http.ResponseWriter, r *http.Request, participantID string) {
	direct, err := h.Directory.ListDirect(r.Context(), participantID)
	if err != nil {
		if errors.Is(err, storage.ErrParticipantNotFound) {
			http.Error(w, "Participant not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve referrals: %v", err), http.StatusInternalServerError)
		}
		return
	}

	indirect, err := h.Directory.ListIndirect(r.Context(), participantID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve referrals: %v", err), http.StatusInternalServerError)
		return
	}

	tree := api.ReferralTree{
		Direct:        make([]api.Participant, len(direct)),
		Indirect:      make([]api.Participant, len(indirect)),
		TotalDirect:   len(direct),
		TotalIndirect: len(indirect),
	}
	for i, participant := range direct {
		tree.Direct[i] = *mapping.ToApiParticipant(&participant)
	}
	for i, participant := range indirect {
		tree.Indirect[i] = *mapping.ToApiParticipant(&participant)
	}

	writeJSON(w, http.StatusOK, tree)
}

package storage

import (
	"context"

	"github.com/chris/referral-earnings/pkg/models"
)

// ParticipantReader defines the interface for reading participant data.
type ParticipantReader interface {
	// GetParticipant retrieves a participant by its ID.
	GetParticipant(ctx context.Context, participantID string) (*models.Participant, error)

	// GetParticipantByCode retrieves a participant by its referral code.
	GetParticipantByCode(ctx context.Context, referralCode string) (*models.Participant, error)

	// ListParticipants retrieves all participants from the storage.
	ListParticipants(ctx context.Context) ([]models.Participant, error)
}

// ParticipantWriter defines the interface for enrolling participants.
type ParticipantWriter interface {
	// CreateParticipant persists a new participant and claims its referral
	// code. When the participant has a sponsor, the sponsor's recruit list is
	// appended in the same atomic unit, guarded by the recruit capacity cap.
	// Returns ErrReferralCapacityExceeded when the sponsor is full, and
	// ErrCodeTaken on a referral-code collision so the caller can retry with
	// a fresh code.
	CreateParticipant(ctx context.Context, participant *models.Participant, sponsor *models.Participant) error
}

// ParticipantStore combines the reader and writer interfaces.
type ParticipantStore interface {
	ParticipantReader
	ParticipantWriter
}

// Package referral implements the referral directory: the authoritative view
// of who sponsored whom, how deep each participant sits in the network, and
// which ancestors a purchase pays commission to.
package referral

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chris/referral-earnings/pkg/models"
	"github.com/chris/referral-earnings/pkg/storage"
	"github.com/google/uuid"
)

// PayoutDepth is how many levels up the sponsor chain a purchase pays.
// Independent of models.MaxNetworkDepth, which caps enrollment.
const PayoutDepth = 2

// Directory maintains the sponsor/recruit graph and its invariants.
type Directory struct {
	store storage.ParticipantStore
}

// NewDirectory creates a Directory backed by the given participant store.
func NewDirectory(store storage.ParticipantStore) *Directory {
	return &Directory{store: store}
}

// Enrollment is the input to Enroll.
type Enrollment struct {
	Name        string
	Email       string
	SponsorCode string
}

// Enroll validates the sponsor code, assigns the new participant's level and
// a network-unique referral code, and persists the participant together with
// the sponsor's updated recruit list.
//
// The capacity check here is advisory; the storage layer re-checks it inside
// the same atomic write that appends the recruit, so two concurrent
// enrollments under a sponsor with one free slot cannot both succeed.
func (d *Directory) Enroll(ctx context.Context, enrollment Enrollment) (*models.Participant, error) {
	var sponsor *models.Participant
	level := 0

	if enrollment.SponsorCode != "" {
		var err error
		sponsor, err = d.store.GetParticipantByCode(ctx, strings.ToUpper(enrollment.SponsorCode))
		if err != nil {
			if errors.Is(err, storage.ErrParticipantNotFound) {
				return nil, storage.ErrInvalidReferral
			}
			return nil, fmt.Errorf("failed to resolve sponsor code: %w", err)
		}

		if len(sponsor.Recruits) >= models.MaxDirectRecruits {
			return nil, storage.ErrReferralCapacityExceeded
		}

		level = sponsor.Level + 1
		if level > models.MaxNetworkDepth {
			return nil, storage.ErrDepthExceeded
		}
	}

	participant := &models.Participant{
		Id:        uuid.New().String(),
		Name:      enrollment.Name,
		Email:     strings.ToLower(enrollment.Email),
		Level:     level,
		Recruits:  []string{},
		Active:    true,
		Version:   1,
		CreatedAt: time.Now(),
	}
	if sponsor != nil {
		participant.SponsorCode = sponsor.ReferralCode
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}
		participant.ReferralCode = code

		err = d.store.CreateParticipant(ctx, participant, sponsor)
		if err == nil {
			return participant, nil
		}
		if errors.Is(err, storage.ErrCodeTaken) {
			slog.Warn("referral code collision, retrying", "code", code, "attempt", attempt+1)
			continue
		}
		return nil, err
	}

	return nil, storage.ErrCodeGenerationExhausted
}

// GetParticipant resolves a participant identity through the directory.
func (d *Directory) GetParticipant(ctx context.Context, participantID string) (*models.Participant, error) {
	return d.store.GetParticipant(ctx, participantID)
}

// ResolveChain returns the participant's ancestors, nearest first, walking at
// most PayoutDepth sponsor links. An unsponsored participant yields an empty
// chain.
func (d *Directory) ResolveChain(ctx context.Context, participantID string) ([]models.Participant, error) {
	participant, err := d.store.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}

	var chain []models.Participant
	current := participant
	for hop := 0; hop < PayoutDepth && current.SponsorCode != ""; hop++ {
		sponsor, err := d.store.GetParticipantByCode(ctx, current.SponsorCode)
		if err != nil {
			if errors.Is(err, storage.ErrParticipantNotFound) {
				// Dangling sponsor code; the chain ends here.
				break
			}
			return nil, fmt.Errorf("failed to resolve sponsor chain: %w", err)
		}
		chain = append(chain, *sponsor)
		current = sponsor
	}

	return chain, nil
}

// ListDirect returns the participants directly recruited by the given
// participant.
func (d *Directory) ListDirect(ctx context.Context, participantID string) ([]models.Participant, error) {
	participant, err := d.store.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	return d.resolveRecruits(ctx, participant.Recruits)
}

// ListIndirect returns the participants two hops down: everyone recruited by
// the participant's direct recruits.
func (d *Directory) ListIndirect(ctx context.Context, participantID string) ([]models.Participant, error) {
	direct, err := d.ListDirect(ctx, participantID)
	if err != nil {
		return nil, err
	}

	var indirect []models.Participant
	for _, recruit := range direct {
		next, err := d.resolveRecruits(ctx, recruit.Recruits)
		if err != nil {
			return nil, err
		}
		indirect = append(indirect, next...)
	}
	return indirect, nil
}

func (d *Directory) resolveRecruits(ctx context.Context, codes []string) ([]models.Participant, error) {
	var recruits []models.Participant
	for _, code := range codes {
		recruit, err := d.store.GetParticipantByCode(ctx, code)
		if err != nil {
			if errors.Is(err, storage.ErrParticipantNotFound) {
				slog.Warn("recruit code resolves to no participant", "code", code)
				continue
			}
			return nil, fmt.Errorf("failed to resolve recruit %s: %w", code, err)
		}
		recruits = append(recruits, *recruit)
	}
	return recruits, nil
}

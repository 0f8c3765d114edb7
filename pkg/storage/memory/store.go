// Package memory provides an in-memory implementation of the storage
// interfaces. It backs unit tests and local runs without AWS credentials.
// A single mutex serializes every mutation, which gives the same atomicity
// the DynamoDB implementation gets from conditional transact-writes: the
// recruit-capacity check and append happen under one critical section, as do
// the ledger append and wallet credit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/chris/referral-earnings/pkg/models"
	"github.com/chris/referral-earnings/pkg/storage"
)

// Store implements the Storage interface in process memory.
type Store struct {
	mu           sync.Mutex
	participants map[string]*models.Participant
	codes        map[string]string // referral code -> participant id
	purchases    map[string]*models.Purchase
	ledger       map[string]*models.Earning // distribution key -> entry
	connections  map[string]string          // connection id -> participant id
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		participants: make(map[string]*models.Participant),
		codes:        make(map[string]string),
		purchases:    make(map[string]*models.Purchase),
		ledger:       make(map[string]*models.Earning),
		connections:  make(map[string]string),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

func (s *Store) CreateParticipant(ctx context.Context, participant *models.Participant, sponsor *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.codes[participant.ReferralCode]; exists {
		return storage.ErrCodeTaken
	}

	if sponsor != nil {
		stored, ok := s.participants[sponsor.Id]
		if !ok {
			return storage.ErrParticipantNotFound
		}
		if len(stored.Recruits) >= models.MaxDirectRecruits {
			return storage.ErrReferralCapacityExceeded
		}
		stored.Recruits = append(stored.Recruits, participant.ReferralCode)
		stored.Version++
	}

	clone := *participant
	clone.Recruits = append([]string{}, participant.Recruits...)
	s.participants[participant.Id] = &clone
	s.codes[participant.ReferralCode] = participant.Id
	return nil
}

func (s *Store) GetParticipant(ctx context.Context, participantID string) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getParticipantLocked(participantID)
}

func (s *Store) getParticipantLocked(participantID string) (*models.Participant, error) {
	participant, ok := s.participants[participantID]
	if !ok {
		return nil, storage.ErrParticipantNotFound
	}
	clone := *participant
	clone.Recruits = append([]string{}, participant.Recruits...)
	return &clone, nil
}

func (s *Store) GetParticipantByCode(ctx context.Context, referralCode string) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.codes[referralCode]
	if !ok {
		return nil, storage.ErrParticipantNotFound
	}
	return s.getParticipantLocked(id)
}

func (s *Store) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	participants := make([]models.Participant, 0, len(s.participants))
	for _, participant := range s.participants {
		clone := *participant
		clone.Recruits = append([]string{}, participant.Recruits...)
		participants = append(participants, clone)
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].CreatedAt.Before(participants[j].CreatedAt)
	})
	return participants, nil
}

func (s *Store) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.purchases[purchase.Id]; exists {
		return fmt.Errorf("purchase %s already exists", purchase.Id)
	}
	clone := *purchase
	s.purchases[purchase.Id] = &clone
	return nil
}

func (s *Store) GetPurchase(ctx context.Context, purchaseID string) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purchase, ok := s.purchases[purchaseID]
	if !ok {
		return nil, storage.ErrPurchaseNotFound
	}
	clone := *purchase
	return &clone, nil
}

func (s *Store) ListPurchasesByBuyer(ctx context.Context, buyerID string) ([]models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purchases []models.Purchase
	for _, purchase := range s.purchases {
		if purchase.BuyerId == buyerID {
			purchases = append(purchases, *purchase)
		}
	}
	sort.Slice(purchases, func(i, j int) bool {
		return purchases[i].CreatedAt.Before(purchases[j].CreatedAt)
	})
	return purchases, nil
}

func (s *Store) AppendEarning(ctx context.Context, earning *models.Earning) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ledger[earning.DistributionKey]; exists {
		return storage.ErrDuplicateEarning
	}
	payee, ok := s.participants[earning.PayeeId]
	if !ok {
		return storage.ErrParticipantNotFound
	}

	clone := *earning
	s.ledger[earning.DistributionKey] = &clone
	payee.WalletBalance += earning.Amount
	payee.Version++
	return nil
}

func (s *Store) ListEarningsByPayee(ctx context.Context, payeeID string) ([]models.Earning, error) {
	return s.listEarnings(func(e *models.Earning) bool { return e.PayeeId == payeeID })
}

func (s *Store) ListEarningsByPayer(ctx context.Context, payerID string) ([]models.Earning, error) {
	return s.listEarnings(func(e *models.Earning) bool { return e.PayerId == payerID })
}

func (s *Store) listEarnings(match func(*models.Earning) bool) ([]models.Earning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var earnings []models.Earning
	for _, earning := range s.ledger {
		if match(earning) {
			earnings = append(earnings, *earning)
		}
	}
	sort.Slice(earnings, func(i, j int) bool {
		return earnings[i].CreatedAt.Before(earnings[j].CreatedAt)
	})
	return earnings, nil
}

func (s *Store) ListRecentEarnings(ctx context.Context, limit int32) ([]models.Earning, error) {
	earnings, err := s.listEarnings(func(*models.Earning) bool { return true })
	if err != nil {
		return nil, err
	}
	// listEarnings sorts oldest first; reverse to newest first.
	for i, j := 0, len(earnings)-1; i < j; i, j = i+1, j-1 {
		earnings[i], earnings[j] = earnings[j], earnings[i]
	}
	if int32(len(earnings)) > limit {
		earnings = earnings[:limit]
	}
	return earnings, nil
}

func (s *Store) SumEarningsByLevel(ctx context.Context, payeeID string) (map[int]models.LevelSummary, error) {
	earnings, err := s.ListEarningsByPayee(ctx, payeeID)
	if err != nil {
		return nil, err
	}
	summary := make(map[int]models.LevelSummary)
	for _, earning := range earnings {
		levelSummary := summary[earning.Level]
		levelSummary.Total += earning.Amount
		levelSummary.Count++
		summary[earning.Level] = levelSummary
	}
	return summary, nil
}

func (s *Store) AddConnection(ctx context.Context, participantID, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[connectionID] = participantID
	return nil
}

func (s *Store) RemoveConnection(ctx context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, connectionID)
	return nil
}

func (s *Store) GetConnectionsForParticipant(ctx context.Context, participantID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var connectionIDs []string
	for connectionID, owner := range s.connections {
		if owner == participantID {
			connectionIDs = append(connectionIDs, connectionID)
		}
	}
	sort.Strings(connectionIDs)
	return connectionIDs, nil
}

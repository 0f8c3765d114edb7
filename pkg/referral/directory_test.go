package referral

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/chris/referral-earnings/pkg/models"
	"github.com/chris/referral-earnings/pkg/storage"
	"github.com/chris/referral-earnings/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enroll(t *testing.T, directory *Directory, name, sponsorCode string) *models.Participant {
	t.Helper()
	participant, err := directory.Enroll(context.Background(), Enrollment{
		Name:        name,
		Email:       name + "@example.com",
		SponsorCode: sponsorCode,
	})
	require.NoError(t, err)
	return participant
}

func TestEnrollRoot(t *testing.T) {
	directory := NewDirectory(memory.New())

	root := enroll(t, directory, "root", "")

	assert.Equal(t, 0, root.Level)
	assert.Empty(t, root.SponsorCode)
	assert.Len(t, root.ReferralCode, codeLength)
	assert.Empty(t, root.Recruits)
	assert.Zero(t, root.WalletBalance)
	assert.True(t, root.Active)
}

func TestEnrollUnderSponsor(t *testing.T) {
	store := memory.New()
	directory := NewDirectory(store)
	ctx := context.Background()

	root := enroll(t, directory, "root", "")
	recruit := enroll(t, directory, "recruit", root.ReferralCode)

	assert.Equal(t, 1, recruit.Level)
	assert.Equal(t, root.ReferralCode, recruit.SponsorCode)

	rootAfter, err := store.GetParticipant(ctx, root.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{recruit.ReferralCode}, rootAfter.Recruits)
}

func TestEnrollSponsorCodeCaseInsensitive(t *testing.T) {
	directory := NewDirectory(memory.New())

	root := enroll(t, directory, "root", "")
	recruit, err := directory.Enroll(context.Background(), Enrollment{
		Name:        "recruit",
		Email:       "recruit@example.com",
		SponsorCode: strings.ToLower(root.ReferralCode),
	})
	require.NoError(t, err)
	assert.Equal(t, root.ReferralCode, recruit.SponsorCode)
}

func TestEnrollInvalidSponsorCode(t *testing.T) {
	directory := NewDirectory(memory.New())

	_, err := directory.Enroll(context.Background(), Enrollment{
		Name:        "orphan",
		Email:       "orphan@example.com",
		SponsorCode: "NOSUCH",
	})
	assert.ErrorIs(t, err, storage.ErrInvalidReferral)
}

func TestEnrollCapacityExceeded(t *testing.T) {
	directory := NewDirectory(memory.New())

	root := enroll(t, directory, "root", "")
	for i := 0; i < models.MaxDirectRecruits; i++ {
		enroll(t, directory, fmt.Sprintf("recruit%d", i), root.ReferralCode)
	}

	_, err := directory.Enroll(context.Background(), Enrollment{
		Name:        "overflow",
		Email:       "overflow@example.com",
		SponsorCode: root.ReferralCode,
	})
	assert.ErrorIs(t, err, storage.ErrReferralCapacityExceeded)
}

func TestEnrollDepthExceeded(t *testing.T) {
	directory := NewDirectory(memory.New())

	root := enroll(t, directory, "root", "")
	level1 := enroll(t, directory, "level1", root.ReferralCode)
	level2 := enroll(t, directory, "level2", level1.ReferralCode)

	_, err := directory.Enroll(context.Background(), Enrollment{
		Name:        "level3",
		Email:       "level3@example.com",
		SponsorCode: level2.ReferralCode,
	})
	assert.ErrorIs(t, err, storage.ErrDepthExceeded)
}

// collidingStore fails CreateParticipant with ErrCodeTaken until the
// succeedOn-th attempt (never, when zero), then delegates.
type collidingStore struct {
	storage.ParticipantStore
	attempts  int
	succeedOn int
}

func (c *collidingStore) CreateParticipant(ctx context.Context, participant, sponsor *models.Participant) error {
	c.attempts++
	if c.succeedOn != 0 && c.attempts >= c.succeedOn {
		return c.ParticipantStore.CreateParticipant(ctx, participant, sponsor)
	}
	return storage.ErrCodeTaken
}

func TestEnrollCodeGenerationExhausted(t *testing.T) {
	store := &collidingStore{ParticipantStore: memory.New()}
	directory := NewDirectory(store)

	_, err := directory.Enroll(context.Background(), Enrollment{
		Name:  "alice",
		Email: "alice@example.com",
	})

	assert.ErrorIs(t, err, storage.ErrCodeGenerationExhausted)
	assert.Equal(t, maxCodeAttempts, store.attempts)
}

func TestEnrollRetriesAfterCodeCollision(t *testing.T) {
	store := &collidingStore{ParticipantStore: memory.New(), succeedOn: 2}
	directory := NewDirectory(store)

	participant, err := directory.Enroll(context.Background(), Enrollment{
		Name:  "alice",
		Email: "alice@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, store.attempts)
	assert.Len(t, participant.ReferralCode, codeLength)
}

func TestEnrollConcurrentCapacityRace(t *testing.T) {
	directory := NewDirectory(memory.New())
	ctx := context.Background()

	root := enroll(t, directory, "root", "")
	for i := 0; i < models.MaxDirectRecruits-1; i++ {
		enroll(t, directory, fmt.Sprintf("recruit%d", i), root.ReferralCode)
	}

	// Sponsor has exactly one free slot; N simultaneous enrollments must
	// produce exactly one success.
	const contenders = 8
	results := make(chan error, contenders)
	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := directory.Enroll(ctx, Enrollment{
				Name:        fmt.Sprintf("contender%d", i),
				Email:       fmt.Sprintf("contender%d@example.com", i),
				SponsorCode: root.ReferralCode,
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, storage.ErrReferralCapacityExceeded)
		}
	}
	assert.Equal(t, 1, succeeded)

	rootAfter, err := directory.GetParticipant(ctx, root.Id)
	require.NoError(t, err)
	assert.Len(t, rootAfter.Recruits, models.MaxDirectRecruits)
}

func TestResolveChain(t *testing.T) {
	directory := NewDirectory(memory.New())
	ctx := context.Background()

	root := enroll(t, directory, "root", "")
	level1 := enroll(t, directory, "level1", root.ReferralCode)
	level2 := enroll(t, directory, "level2", level1.ReferralCode)

	t.Run("Two Ancestors", func(t *testing.T) {
		chain, err := directory.ResolveChain(ctx, level2.Id)
		require.NoError(t, err)
		require.Len(t, chain, 2)
		assert.Equal(t, level1.Id, chain[0].Id)
		assert.Equal(t, root.Id, chain[1].Id)
	})

	t.Run("One Ancestor", func(t *testing.T) {
		chain, err := directory.ResolveChain(ctx, level1.Id)
		require.NoError(t, err)
		require.Len(t, chain, 1)
		assert.Equal(t, root.Id, chain[0].Id)
	})

	t.Run("Root Has No Chain", func(t *testing.T) {
		chain, err := directory.ResolveChain(ctx, root.Id)
		require.NoError(t, err)
		assert.Empty(t, chain)
	})

	t.Run("Unknown Participant", func(t *testing.T) {
		_, err := directory.ResolveChain(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrParticipantNotFound)
	})
}

func TestListDirectAndIndirect(t *testing.T) {
	directory := NewDirectory(memory.New())
	ctx := context.Background()

	root := enroll(t, directory, "root", "")
	a := enroll(t, directory, "a", root.ReferralCode)
	b := enroll(t, directory, "b", root.ReferralCode)
	a1 := enroll(t, directory, "a1", a.ReferralCode)
	b1 := enroll(t, directory, "b1", b.ReferralCode)

	direct, err := directory.ListDirect(ctx, root.Id)
	require.NoError(t, err)
	require.Len(t, direct, 2)
	assert.Equal(t, a.Id, direct[0].Id)
	assert.Equal(t, b.Id, direct[1].Id)

	indirect, err := directory.ListIndirect(ctx, root.Id)
	require.NoError(t, err)
	require.Len(t, indirect, 2)
	assert.Equal(t, a1.Id, indirect[0].Id)
	assert.Equal(t, b1.Id, indirect[1].Id)
}

func TestGenerateReferralCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateReferralCode()
		require.NoError(t, err)
		assert.Len(t, code, codeLength)
		for _, r := range code {
			assert.Contains(t, codeAlphabet, string(r))
		}
		seen[code] = true
	}
	// Collisions in 100 draws from 36^6 would be remarkable.
	assert.Greater(t, len(seen), 95)
}

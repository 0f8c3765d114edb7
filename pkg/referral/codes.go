package referral

import (
	"crypto/rand"
	"fmt"
)

// Referral codes are short, human-shareable, and case-insensitive on entry
// (always stored upper-case).
const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// maxCodeAttempts bounds the collision retry loop in Enroll. Collisions are
// rare at this code length, so repeated failures point at a storage problem
// rather than bad luck.
const maxCodeAttempts = 10

// generateReferralCode returns a random candidate code. Uniqueness is
// enforced by the storage layer, not here.
func generateReferralCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf), nil
}

package storage

import "errors"

// ErrInvalidReferral is returned when an enrollment names a sponsor code that
// does not resolve to any participant.
var ErrInvalidReferral = errors.New("invalid referral code")

// ErrReferralCapacityExceeded is returned when a sponsor already has the
// maximum number of direct recruits.
var ErrReferralCapacityExceeded = errors.New("referral capacity exceeded")

// ErrDepthExceeded is returned when enrolling under the sponsor would place
// the new participant deeper than the network depth cap.
var ErrDepthExceeded = errors.New("maximum referral depth exceeded")

// ErrCodeGenerationExhausted is returned when referral-code generation keeps
// colliding with existing codes past the retry bound.
var ErrCodeGenerationExhausted = errors.New("referral code generation exhausted")

// ErrCodeTaken is returned when a generated referral code collides with one
// already claimed by another participant.
var ErrCodeTaken = errors.New("referral code already taken")

// ErrDuplicateEarning is returned when a ledger entry for the same
// (purchase, payee) pair already exists. Distribution treats it as a no-op.
var ErrDuplicateEarning = errors.New("earning already recorded for purchase and payee")

// ErrParticipantNotFound is returned when a participant lookup finds nothing.
var ErrParticipantNotFound = errors.New("participant not found")

// ErrPurchaseNotFound is returned when a purchase lookup finds nothing.
var ErrPurchaseNotFound = errors.New("purchase not found")

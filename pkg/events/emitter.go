package events

import (
	"context"

	"github.com/chris/referral-earnings/pkg/models"
)

// Emitter defines the interface for a component that hands a committed
// earning to the notification pipeline. Emission is best effort; callers log
// and swallow failures.
type Emitter interface {
	// EmitEarning publishes one earning event for asynchronous delivery.
	EmitEarning(ctx context.Context, event *models.EarningEvent) error
}

// NoOpEmitter is an Emitter that does nothing.
type NoOpEmitter struct{}

// EmitEarning does nothing.
func (NoOpEmitter) EmitEarning(ctx context.Context, event *models.EarningEvent) error {
	return nil
}

package websockets

import "context"

// NoOpPublisher is a mock publisher that does nothing.
type NoOpPublisher struct{}

// PublishTo does nothing.
func (p *NoOpPublisher) PublishTo(ctx context.Context, participantID string, message Message) error {
	return nil
}

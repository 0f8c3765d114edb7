package websockets

import (
	"context"
)

// ConnectionManager defines the interface for managing WebSocket connections.
type ConnectionManager interface {
	AddConnection(ctx context.Context, participantID, connectionID string) error
	RemoveConnection(ctx context.Context, connectionID string) error
}

// Publisher defines the interface for publishing messages to one
// participant's connected sessions.
type Publisher interface {
	PublishTo(ctx context.Context, participantID string, message Message) error
}

package storage

import "context"

// WebSocketManager defines the interface for storing and retrieving WebSocket
// connection IDs, grouped by the participant that opened them.
type WebSocketManager interface {
	AddConnection(ctx context.Context, participantID, connectionID string) error
	RemoveConnection(ctx context.Context, connectionID string) error
	GetConnectionsForParticipant(ctx context.Context, participantID string) ([]string, error)
}

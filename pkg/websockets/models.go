package websockets

import "github.com/chris/referral-earnings/pkg/models"

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeEarning is for messages that notify a participant of a new
	// commission payout.
	MessageTypeEarning MessageType = "earningNotification"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// NewEarningMessage wraps an earning event for delivery.
func NewEarningMessage(event *models.EarningEvent) Message {
	return Message{Type: MessageTypeEarning, Payload: event}
}

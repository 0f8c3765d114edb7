package websockets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/chris/referral-earnings/pkg/models"
	"github.com/gorilla/websocket"
)

// session is one open websocket connection. Gorilla connections allow at most
// one concurrent writer, so every write goes through the session's mutex:
// concurrent distributions paying the same payee publish concurrently.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) write(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub is an in-process Publisher for the standalone server: clients connect
// over a plain websocket endpoint and are grouped by participant ID, the way
// API Gateway connections are grouped in the connections table.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*session]struct{}
	upgrader websocket.Upgrader
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[*session]struct{}),
		upgrader: websocket.Upgrader{
			// The API is origin-agnostic; access control happens upstream.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Make sure we conform to the interface
var _ Publisher = (*Hub)(nil)

// ServeHTTP upgrades the request to a websocket session bound to the
// participant named in the participant_id query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	participantID := r.URL.Query().Get("participant_id")
	if participantID == "" {
		http.Error(w, "participant_id query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade websocket connection", "error", err)
		return
	}

	sess := &session{conn: conn}
	h.register(participantID, sess)
	slog.Info("websocket session opened", "participant_id", participantID)

	// Hold the connection open; inbound frames are ignored.
	go func() {
		defer func() {
			h.unregister(participantID, sess)
			conn.Close()
			slog.Info("websocket session closed", "participant_id", participantID)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// PublishTo sends a message to every session the participant has open.
func (h *Hub) PublishTo(ctx context.Context, participantID string, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	h.mu.RLock()
	sessions := make([]*session, 0, len(h.sessions[participantID]))
	for sess := range h.sessions[participantID] {
		sessions = append(sessions, sess)
	}
	h.mu.RUnlock()

	for _, sess := range sessions {
		if err := sess.write(payload); err != nil {
			slog.Error("failed to write to websocket session",
				"participant_id", participantID, "error", err)
			h.unregister(participantID, sess)
			sess.conn.Close()
		}
	}

	return nil
}

// EmitEarning delivers the event straight to the payee's sessions. It lets
// the Hub stand in for the SQS pipeline when running without AWS.
func (h *Hub) EmitEarning(ctx context.Context, event *models.EarningEvent) error {
	return h.PublishTo(ctx, event.PayeeId, NewEarningMessage(event))
}

func (h *Hub) register(participantID string, sess *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[participantID] == nil {
		h.sessions[participantID] = make(map[*session]struct{})
	}
	h.sessions[participantID][sess] = struct{}{}
}

func (h *Hub) unregister(participantID string, sess *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions[participantID], sess)
	if len(h.sessions[participantID]) == 0 {
		delete(h.sessions, participantID)
	}
}

package websockets

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chris/referral-earnings/pkg/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, server *httptest.Server, participantID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?participant_id=" + participantID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var message Message
	require.NoError(t, json.Unmarshal(payload, &message))
	return message
}

func TestHubEmitEarning(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	payeeConn := dialHub(t, server, "payee-1")
	otherConn := dialHub(t, server, "payee-2")

	event := &models.EarningEvent{
		PayeeId:          "payee-1",
		Amount:           100_00,
		PayerDisplayName: "buyer",
		Level:            1,
		Timestamp:        time.Now().UTC(),
	}
	require.NoError(t, hub.EmitEarning(context.Background(), event))

	message := readMessage(t, payeeConn)
	assert.Equal(t, MessageTypeEarning, message.Type)

	payload, ok := message.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "payee-1", payload["payee_id"])
	assert.Equal(t, float64(100_00), payload["amount"])
	assert.Equal(t, "buyer", payload["payer_display_name"])

	// The other participant's session stays silent.
	require.NoError(t, otherConn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := otherConn.ReadMessage()
	assert.Error(t, err)
}

func TestHubConcurrentPublishesToOneSession(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server, "payee-1")

	// Concurrent distributions paying the same payee publish to the same
	// session; every write must arrive and nothing may panic.
	const publishers = 50
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := hub.EmitEarning(context.Background(), &models.EarningEvent{
				PayeeId:   "payee-1",
				Amount:    100_00,
				Level:     1,
				Timestamp: time.Now().UTC(),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	for i := 0; i < publishers; i++ {
		message := readMessage(t, conn)
		assert.Equal(t, MessageTypeEarning, message.Type)
	}
}

func TestHubPublishToNoSessions(t *testing.T) {
	hub := NewHub()

	err := hub.PublishTo(context.Background(), "nobody", Message{Type: MessageTypeEarning})
	assert.NoError(t, err)
}

func TestHubRequiresParticipantID(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}

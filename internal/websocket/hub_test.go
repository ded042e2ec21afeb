package websocket

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxwizz/pkg/contracts/domain"
	"taxwizz/pkg/contracts/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// receive pulls the next frame from a client's send channel.
func receive(t *testing.T, c *Client) events.Envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var envelope events.Envelope
		require.NoError(t, json.Unmarshal(data, &envelope))
		return envelope
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return events.Envelope{}
	}
}

func TestHub_RegisterSendsConnectionMessage(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	defer hub.Stop()

	client := NewClientWithConnection(hub, newMockConnection(), testLogger())
	hub.Register(client)

	envelope := receive(t, client)
	assert.Equal(t, events.MessageTypeConnection, envelope.Type)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastStatusReachesAllClients(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	defer hub.Stop()

	first := NewClientWithConnection(hub, newMockConnection(), testLogger())
	second := NewClientWithConnection(hub, newMockConnection(), testLogger())
	hub.Register(first)
	hub.Register(second)

	// Drain the connection greetings
	receive(t, first)
	receive(t, second)

	hub.BroadcastStatus("user", domain.StatusUpdate{
		State:    domain.SyncProcessing,
		Message:  "Converting statement",
		Progress: 40,
	})

	for _, client := range []*Client{first, second} {
		envelope := receive(t, client)
		assert.Equal(t, events.MessageTypeStatus, envelope.Type)
		assert.False(t, envelope.Timestamp.IsZero())

		payload, ok := envelope.Payload.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "processing", payload["state"])
		assert.Equal(t, float64(40), payload["progress"])
	}
}

func TestHub_BroadcastProgress(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	defer hub.Stop()

	client := NewClientWithConnection(hub, newMockConnection(), testLogger())
	hub.Register(client)
	receive(t, client)

	hub.BroadcastProgress("extract", 60, "Extracting trade records")

	envelope := receive(t, client)
	assert.Equal(t, events.MessageTypeProgress, envelope.Type)

	payload, ok := envelope.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "extract", payload["step"])
	assert.Equal(t, float64(60), payload["progress"])
}

func TestHub_UnregisterRemovesClient(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	defer hub.Stop()

	client := NewClientWithConnection(hub, newMockConnection(), testLogger())
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.unregister <- client
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_StopIsIdempotent(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	hub.Stop()
	hub.Stop()
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_Metrics(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	defer hub.Stop()

	client := NewClientWithConnection(hub, newMockConnection(), testLogger())
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	metrics := hub.Metrics()
	assert.Equal(t, 1, metrics["active_clients"])
	assert.Equal(t, int64(1), metrics["total_connections"])
}

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/events"
)

type fakeConn struct {
	mu       sync.Mutex
	frames   [][]byte
	closed   bool
	writeErr error
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte{}, c.frames...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zap.NewNop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHub_BroadcastsEventsToClients(t *testing.T) {
	hub, _ := startHub(t)
	a, b := &fakeConn{}, &fakeConn{}
	hub.Register(a)
	hub.Register(b)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	event := events.New(events.EventComplaintCreated, "c1", domain.Actor{ID: "u1", Name: "Budi"},
		events.ComplaintCreatedPayload{TicketNumber: "TKT-12345", Severity: domain.SeverityHigh})
	require.NoError(t, hub.HandleEvent(context.Background(), event))

	for _, conn := range []*fakeConn{a, b} {
		require.Eventually(t, func() bool { return len(conn.received()) == 1 }, time.Second, 5*time.Millisecond)
		var frame map[string]any
		require.NoError(t, json.Unmarshal(conn.received()[0], &frame))
		assert.Equal(t, "complaint_created", frame["type"])
		assert.Equal(t, "c1", frame["complaint_id"])
		assert.Equal(t, "TKT-12345", frame["data"].(map[string]any)["no_tiket"])
	}
}

func TestHub_DropsClientsThatFailToWrite(t *testing.T) {
	hub, _ := startHub(t)
	healthy := &fakeConn{}
	broken := &fakeConn{writeErr: errors.New("broken pipe")}
	hub.Register(healthy)
	hub.Register(broken)

	hub.Broadcast([]byte(`{}`))

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())
	assert.False(t, healthy.isClosed())
}

func TestHub_UnregisterAndShutdownCloseConnections(t *testing.T) {
	hub, cancel := startHub(t)
	a, b := &fakeConn{}, &fakeConn{}
	hub.Register(a)
	hub.Register(b)

	hub.Unregister(a)
	require.Eventually(t, a.isClosed, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, b.isClosed, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)

	hub.Register(&fakeConn{})
	hub.Broadcast([]byte(`{}`))
}

package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterAndBroadcast(t *testing.T) {
	h := NewHub()

	client, err := h.Register(1, nil)
	require.NoError(t, err)
	assert.True(t, h.IsOnline(1))
	assert.False(t, h.IsOnline(2))

	h.Broadcast(1, "hello")
	select {
	case msg := <-client.Send:
		assert.Equal(t, "hello", string(msg))
	default:
		t.Fatal("expected broadcast message in client send buffer")
	}

	// Broadcasts to other users do not leak into this client's buffer.
	h.Broadcast(2, "other")
	select {
	case <-client.Send:
		t.Fatal("unexpected message for another user")
	default:
	}

	h.UnregisterClient(client)
	assert.False(t, h.IsOnline(1))
}

func TestHubPerUserConnectionLimit(t *testing.T) {
	h := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := h.Register(7, nil)
		require.NoError(t, err)
	}

	_, err := h.Register(7, nil)
	assert.Error(t, err)
}

func TestHubBroadcastAll(t *testing.T) {
	h := NewHub()

	c1, err := h.Register(1, nil)
	require.NoError(t, err)
	c2, err := h.Register(2, nil)
	require.NoError(t, err)

	h.BroadcastAll("refresh")

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "refresh", string(msg))
		default:
			t.Fatal("expected broadcast for every client")
		}
	}
}

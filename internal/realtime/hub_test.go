package realtime

import (
	"encoding/json"
	"testing"

	"saasadmin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan []byte, sendBufferSize)}
	h.Register(c)
	return c
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	h := NewHub()
	a := newTestClient(h)
	b := newTestClient(h)
	assert.Equal(t, 2, h.ClientCount())

	h.Broadcast(&models.Activity{ID: 7, Action: "user.created", UserID: 1})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			var ev struct {
				Type string          `json:"type"`
				Data models.Activity `json:"data"`
			}
			require.NoError(t, json.Unmarshal(msg, &ev))
			assert.Equal(t, EventTypeActivity, ev.Type)
			assert.Equal(t, uint(7), ev.Data.ID)
			assert.Equal(t, "user.created", ev.Data.Action)
		default:
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	h := NewHub()
	c := newTestClient(h)

	for i := 0; i < sendBufferSize+5; i++ {
		h.Send([]byte("x"))
	}
	assert.Len(t, c.send, sendBufferSize)
}

func TestHub_UnregisterClosesQueue(t *testing.T) {
	h := NewHub()
	c := newTestClient(h)

	h.Unregister(c)
	_, ok := <-c.send
	assert.False(t, ok)
	assert.Equal(t, 0, h.ClientCount())

	// 重复注销不应 panic
	h.Unregister(c)
}

func TestHub_Close(t *testing.T) {
	h := NewHub()
	newTestClient(h)
	newTestClient(h)

	h.Close()
	assert.Equal(t, 0, h.ClientCount())
}

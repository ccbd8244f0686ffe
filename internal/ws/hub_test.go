package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub) *Client {
	return &Client{
		Hub:    hub,
		Send:   make(chan []byte, 16),
		topics: make(map[string]struct{}),
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub message")
		return nil
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient(hub)
	b := newTestClient(hub)
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast([]byte("hello"))

	assert.Equal(t, []byte("hello"), receive(t, a))
	assert.Equal(t, []byte("hello"), receive(t, b))
}

func TestHubTopicBroadcastOnlyReachesSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	subscriber := newTestClient(hub)
	subscriber.Subscribe("ticket:abc")
	bystander := newTestClient(hub)
	hub.Register(subscriber)
	hub.Register(bystander)

	hub.BroadcastTopic("ticket:abc", []byte("update"))
	hub.Broadcast([]byte("flush"))

	assert.Equal(t, []byte("update"), receive(t, subscriber))
	// The bystander only ever sees the untargeted broadcast.
	assert.Equal(t, []byte("flush"), receive(t, bystander))
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := newTestClient(hub)
	hub.Register(c)
	hub.Unregister(c)

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok, "send channel closed on unregister")
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestPublishWrapsPayloadInEnvelope(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := newTestClient(hub)
	hub.Register(c)

	hub.Publish(MessageTicketsBulkDeleted, map[string]any{"deleted_count": 3})

	var event struct {
		Type    string `json:"type"`
		Payload struct {
			DeletedCount int `json:"deleted_count"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(receive(t, c), &event))
	assert.Equal(t, "TicketsBulkDeleted", event.Type)
	assert.Equal(t, 3, event.Payload.DeletedCount)
}

func TestSubscriptionTopicValidation(t *testing.T) {
	assert.True(t, isAllowedSubscriptionTopic("tickets"))
	assert.True(t, isAllowedSubscriptionTopic("ticket:7f9a"))
	assert.False(t, isAllowedSubscriptionTopic(""))
	assert.False(t, isAllowedSubscriptionTopic("ticket 7f9a"))
	assert.False(t, isAllowedSubscriptionTopic("topic\nwith\nnewlines"))
}

func TestTicketIDFromTopic(t *testing.T) {
	id, ok := ticketIDFromTopic("ticket:abc-123")
	require.True(t, ok)
	assert.Equal(t, "abc-123", id)

	_, ok = ticketIDFromTopic("tickets")
	assert.False(t, ok)

	_, ok = ticketIDFromTopic("ticket:")
	assert.False(t, ok)
}

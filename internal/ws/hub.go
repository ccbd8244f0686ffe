// Package ws pushes entity change events to connected browsers.
package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// MessageType represents the type of a hub payload.
type MessageType string

const (
	MessageTicketCreated         MessageType = "TicketCreated"
	MessageTicketUpdated         MessageType = "TicketUpdated"
	MessageTicketsBulkDeleted    MessageType = "TicketsBulkDeleted"
	MessageTicketPriorityChanged MessageType = "TicketPriorityChanged"
	MessageCommentAdded          MessageType = "CommentAdded"
	MessageUsersBulkDeleted      MessageType = "UsersBulkDeleted"
	MessageProjectUpdated        MessageType = "ProjectUpdated"
)

// BroadcastMessage packages a payload for a topic-scoped broadcast.
type BroadcastMessage struct {
	Topic   string
	Payload []byte
}

// Hub manages active clients and topic-scoped broadcasts.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan BroadcastMessage
}

// NewHub builds a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastMessage),
	}
}

// Run starts the hub loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				if message.Topic != "" && !client.Subscribed(message.Topic) {
					continue
				}
				select {
				case client.Send <- message.Payload:
				default:
					delete(h.clients, client)
					close(client.Send)
				}
			}
		}
	}
}

// Broadcast sends a payload to every connected client.
func (h *Hub) Broadcast(payload []byte) {
	h.broadcast <- BroadcastMessage{Payload: payload}
}

// BroadcastTopic sends a payload to clients subscribed to a topic.
func (h *Hub) BroadcastTopic(topic string, payload []byte) {
	h.broadcast <- BroadcastMessage{Topic: topic, Payload: payload}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Client represents a websocket connection.
type Client struct {
	Conn *websocket.Conn
	Hub  *Hub
	Send chan []byte

	mu     sync.RWMutex
	topics map[string]struct{}
}

// NewClient returns a client ready for registration.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan []byte, 256),
		topics: make(map[string]struct{}),
	}
}

// Subscribe adds a topic to the client's subscription set.
func (c *Client) Subscribe(topic string) {
	c.mu.Lock()
	c.topics[topic] = struct{}{}
	c.mu.Unlock()
}

// Unsubscribe removes a topic from the client's subscription set.
func (c *Client) Unsubscribe(topic string) {
	c.mu.Lock()
	delete(c.topics, topic)
	c.mu.Unlock()
}

// Subscribed reports whether the client listens on a topic.
func (c *Client) Subscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.topics[topic]
	return ok
}

package ws

import (
	"encoding/json"
	"log"
)

// Event is the JSON envelope pushed to subscribed clients.
type Event struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// Publish marshals an event and broadcasts it to every client.
func (h *Hub) Publish(msgType MessageType, payload any) {
	data, err := json.Marshal(Event{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("warning: failed to marshal %s event: %v", msgType, err)
		return
	}
	h.Broadcast(data)
}

// PublishTopic marshals an event and broadcasts it to a topic's subscribers.
func (h *Hub) PublishTopic(topic string, msgType MessageType, payload any) {
	data, err := json.Marshal(Event{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("warning: failed to marshal %s event: %v", msgType, err)
		return
	}
	h.BroadcastTopic(topic, data)
}

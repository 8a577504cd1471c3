package domain

import (
	"encoding/json"
	"time"
)

// Reserved sync event types. Connection acks and keep-alives carry no
// payload; clients treat keep-alive as a no-op heartbeat.
const (
	SyncEventConnection = "connection"
	SyncEventKeepAlive  = "keep-alive"
)

// SyncEvent is the envelope pushed to live subscribers, one JSON object per
// line on the stream.
type SyncEvent struct {
	ListID    string          `json:"list_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	ActorID   string          `json:"actor_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// SyncEventFromOutbox converts a stored outbox event into its subscriber-
// facing envelope.
func SyncEventFromOutbox(ev *OutboxEvent) *SyncEvent {
	return &SyncEvent{
		ListID:    ev.ListID,
		Type:      ev.EventType,
		Payload:   ev.Payload,
		ActorID:   ev.ActorID,
		Timestamp: ev.OccurredAt,
	}
}

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the canonical event wrapper published to NATS.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	EntityType    EntityType      `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	Topic         string          `json:"topic"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

// ApprovalEvent is the immutable audit record written for every decision.
type ApprovalEvent struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Decision   string     `json:"decision"`
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	Actor      string     `json:"actor"`
	Reason     string     `json:"reason,omitempty"`
	DecidedAt  time.Time  `json:"decided_at"`
}

// DecisionPayload is the payload of evt.approval.decided.v1 events.
type DecisionPayload struct {
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Decision   string     `json:"decision"`
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	Actor      string     `json:"actor"`
	Reason     string     `json:"reason,omitempty"`
	Warnings   []string   `json:"warnings,omitempty"`
	DecidedAt  time.Time  `json:"decided_at"`
}

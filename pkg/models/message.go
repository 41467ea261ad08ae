// Package models defines the core domain models for the AI action orchestration layer.
package models

import "time"

// MessageRole identifies which side of the conversation authored a message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message is one entry in a session's append-only transcript.
// Messages are immutable once created; ordering is by CreatedAt with
// insertion order breaking ties at the source of truth.
type Message struct {
	ID        string      `json:"id"         validate:"required"`
	SessionID string      `json:"session_id" validate:"required"`
	Role      MessageRole `json:"role"       validate:"required,oneof=user assistant"`
	Content   string      `json:"content"    validate:"required"`
	CreatedAt time.Time   `json:"created_at"`
}

// Session scopes one conversational thread to a business domain.
// ContextData is a snapshot attached to outgoing AI invocations; it is
// never written into message content.
type Session struct {
	ID          string         `json:"id"     validate:"required"`
	Domain      string         `json:"domain" validate:"required"`
	ContextData map[string]any `json:"context_data,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind discriminates user messages from system notices.
type EventKind string

const (
	KindUser   EventKind = "user"
	KindSystem EventKind = "system"
)

// SystemUsername is the author shown on presence notices.
const SystemUsername = "System"

// ChatEvent is an immutable unit of broadcastable chat content.
// The JSON shape is the wire contract of the "new_message" event.
type ChatEvent struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
}

// NewUserEvent builds a user ChatEvent authored by the given username.
func NewUserEvent(username, message string, at time.Time) ChatEvent {
	return ChatEvent{
		ID:        uuid.NewString(),
		Username:  username,
		Message:   message,
		Timestamp: at,
		Kind:      KindUser,
	}
}

// NewSystemEvent builds a system ChatEvent authored by SystemUsername.
func NewSystemEvent(message string, at time.Time) ChatEvent {
	return ChatEvent{
		ID:        uuid.NewString(),
		Username:  SystemUsername,
		Message:   message,
		Timestamp: at,
		Kind:      KindSystem,
	}
}

package event

import "time"

// Type classifies events flowing through the runtime pipeline.
type Type int

const (
	DomainType Type = iota
	TelemetryType
	ChannelCapacityType
)

// Event is the envelope carried on the runtime channels.
// Exclude, when non-empty, names a connection ID that must not
// receive the resulting broadcast (join notices are not echoed
// back to the joining connection).
type Event struct {
	Type      Type
	CreatedAt time.Time
	Exclude   string
	Payload   any
}

// MessagePosted is the raw intake event, before moderation.
// Author is the username bound to the posting connection.
type MessagePosted struct {
	ConnectionID string
	Author       string
	Content      string
	At           time.Time
}

// SanitizedMessage is a MessagePosted after censoring and language
// detection. This is the only user-message payload the fanout delivers.
type SanitizedMessage struct {
	ConnectionID  string
	Author        string
	Content       string
	Lang          string
	CensoredWords []string
	At            time.Time
}

// SystemNotice carries a presence announcement.
type SystemNotice struct {
	Message string
	At      time.Time
}

// ChannelCapacity reports the fill level of a named runtime channel.
type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

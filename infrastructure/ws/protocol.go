package ws

import "chat-live/domain"

// Wire event names, mirroring the browser client contract.
const (
	EventSendMessage = "send_message"
	EventNewMessage  = "new_message"
)

// Inbound is the envelope read from the client. The payload of
// send_message is the raw message text, nothing more.
type Inbound struct {
	Event   string `json:"event"`
	Payload string `json:"payload"`
}

// Outbound is the envelope pushed to the client.
type Outbound struct {
	Event   string           `json:"event"`
	Payload domain.ChatEvent `json:"payload"`
}

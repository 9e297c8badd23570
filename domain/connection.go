package domain

import "time"

// Connection represents a live, authenticated transport session.
// It is owned exclusively by the runtime registry for its lifetime:
// created on a successful handshake, destroyed on disconnect.
type Connection struct {
	ID          string
	Identity    Identity
	ConnectedAt time.Time
}

// Username returns the username of the bound identity.
// Outbound events always use this value, never a client-supplied name.
func (c Connection) Username() string {
	return c.Identity.Username
}

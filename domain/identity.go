// Package domain contains core concepts of the chat system.
// This file defines the Identity bound to authenticated connections.
// No runtime, network, or UI logic should be added here.
package domain

// Identity is the verified (userID, username) pair extracted from a token.
// Immutable once bound to a connection.
type Identity struct {
	UserID   string
	Username string
}

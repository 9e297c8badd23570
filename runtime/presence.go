package runtime

import "fmt"

// Presence notices are derived from registry mutations, never stored.

func JoinNotice(username string) string {
	return fmt.Sprintf("%s has joined the chat", username)
}

func LeaveNotice(username string) string {
	return fmt.Sprintf("%s has left the chat", username)
}

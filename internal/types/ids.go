// internal/types/ids.go
package types

import (
	"strings"

	"github.com/google/uuid"
)

// SessionID identifies a single conversation. The transport layer usually
// supplies one (cookie value, chat ID); NewSessionID mints one when it doesn't.
type SessionID string

type TurnID string

func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

func NewTurnID() TurnID {
	return TurnID(uuid.New().String())
}

// NewSessionKey joins identifier parts into a stable session ID, e.g.
// NewSessionKey("telegram", "12345").
func NewSessionKey(parts ...string) SessionID {
	return SessionID(strings.Join(parts, ":"))
}

// internal/types/models.go
package types

import "time"

// SessionRecord holds per-session state: the single contract slot and a
// turn counter. At most one contract exists per session at any time; an
// accepted update fully replaces the prior text.
type SessionRecord struct {
	SessionID SessionID `json:"session_id"`
	Contract  string    `json:"contract,omitempty"`
	Turns     int64     `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasContract reports whether the session holds a non-empty contract.
func (s *SessionRecord) HasContract() bool {
	return s.Contract != ""
}

// TurnEvent is one line in a session's turn log. It records what the router
// did with a message, not the contract text itself.
type TurnEvent struct {
	ID               TurnID    `json:"id"`
	SessionID        SessionID `json:"session_id"`
	Turn             int64     `json:"turn"`
	At               time.Time `json:"at"`
	Event            string    `json:"event"`
	Source           string    `json:"source"`
	UserMessage      string    `json:"user_message,omitempty"`
	AssistantMessage string    `json:"assistant_message,omitempty"`
	Action           string    `json:"action,omitempty"`
	Intent           string    `json:"intent,omitempty"`
	ContractLen      int       `json:"contract_len"`
}

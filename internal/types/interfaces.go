// internal/types/interfaces.go
package types

import "context"

// SessionStore is the contract memory. Implementations must be safe for
// concurrent use across sessions; the router serializes access within a
// session, so per-session read-modify-write is single-writer.
type SessionStore interface {
	// Resolve returns the session record, creating it on first use.
	Resolve(ctx context.Context, id SessionID) (*SessionRecord, error)
	Get(ctx context.Context, id SessionID) (*SessionRecord, error)
	SetContract(ctx context.Context, id SessionID, text string) error
	ClearContract(ctx context.Context, id SessionID) error
	// NextTurn increments and returns the session's turn counter.
	NextTurn(ctx context.Context, id SessionID) (int64, error)
	List(ctx context.Context) ([]*SessionRecord, error)
	// Delete removes the session entirely (explicit session-clear).
	Delete(ctx context.Context, id SessionID) error
}

// TurnLog is an append-only audit trail of routed turns.
type TurnLog interface {
	Append(ctx context.Context, event *TurnEvent) error
	Tail(ctx context.Context, sessionID SessionID, limit int) ([]*TurnEvent, error)
	Count(ctx context.Context, sessionID SessionID) (int64, error)
}

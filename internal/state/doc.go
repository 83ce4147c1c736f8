// Package state provides filesystem-backed storage implementations.
package state

import "github.com/user/leasecraft/internal/types"

// Compile-time interface compliance checks.
var _ types.SessionStore = (*SessionStore)(nil)
var _ types.SessionStore = (*MemoryStore)(nil)
var _ types.TurnLog = (*TurnLogStore)(nil)

// internal/router/serializer.go
package router

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/user/leasecraft/internal/types"
)

// Serializer runs work per-session in strict order while a global semaphore
// caps concurrency across sessions. Turns within one session never
// interleave, so session state is single-writer by construction.
type Serializer struct {
	global *semaphore.Weighted

	mu    sync.Mutex
	lanes map[types.SessionID]*lane
}

// lane is a refcounted per-session mutex. The refcount lets idle lanes be
// dropped from the map instead of accumulating forever.
type lane struct {
	mu   sync.Mutex
	refs int
}

// NewSerializer creates a Serializer allowing up to maxConcurrent turns to
// execute simultaneously across all sessions.
func NewSerializer(maxConcurrent int64) *Serializer {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Serializer{
		global: semaphore.NewWeighted(maxConcurrent),
		lanes:  make(map[types.SessionID]*lane),
	}
}

func (s *Serializer) acquire(id types.SessionID) *lane {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lanes[id]
	if !ok {
		l = &lane{}
		s.lanes[id] = l
	}
	l.refs++
	return l
}

func (s *Serializer) release(id types.SessionID, l *lane) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(s.lanes, id)
	}
}

// Do runs fn for the session, waiting until earlier turns of the same
// session have finished and a global slot is free. It is synchronous: when
// Do returns, fn has run (or the context was cancelled while waiting).
func (s *Serializer) Do(ctx context.Context, id types.SessionID, fn func(context.Context) error) error {
	l := s.acquire(id)
	defer s.release(id, l)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := s.global.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.global.Release(1)

	return fn(ctx)
}

// internal/state/turnlog.go
package state

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/leasecraft/internal/types"
)

// TurnLogStore is a JSONL-backed append-only log of routed turns.
// Turns are stored per-session in sessions/<sessionID>/turns.jsonl.
type TurnLogStore struct {
	root  string
	mu    sync.Mutex
	locks map[types.SessionID]*sync.Mutex
}

// NewTurnLogStore creates a file-backed TurnLogStore rooted at the given directory.
func NewTurnLogStore(root string) *TurnLogStore {
	return &TurnLogStore{
		root:  root,
		locks: make(map[types.SessionID]*sync.Mutex),
	}
}

// getLock returns the per-session mutex, creating one if it doesn't exist.
func (t *TurnLogStore) getLock(sessionID types.SessionID) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	if lock, ok := t.locks[sessionID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	t.locks[sessionID] = lock
	return lock
}

func (t *TurnLogStore) turnsPath(sessionID types.SessionID) string {
	return filepath.Join(t.root, "sessions", string(sessionID), "turns.jsonl")
}

// Append adds a turn event to the session's log. Missing IDs and timestamps
// are filled in.
func (t *TurnLogStore) Append(_ context.Context, event *types.TurnEvent) error {
	lock := t.getLock(event.SessionID)
	lock.Lock()
	defer lock.Unlock()

	if event.ID == "" {
		event.ID = types.NewTurnID()
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}

	dir := filepath.Dir(t.turnsPath(event.SessionID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal turn event: %w", err)
	}

	f, err := os.OpenFile(t.turnsPath(event.SessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open turn log: %w", err)
	}
	defer f.Close()

	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write turn event: %w", err)
	}

	return nil
}

// Tail returns the last N turn events for the given session.
func (t *TurnLogStore) Tail(_ context.Context, sessionID types.SessionID, limit int) ([]*types.TurnEvent, error) {
	lock := t.getLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.Open(t.turnsPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open turn log: %w", err)
	}
	defer f.Close()

	var events []*types.TurnEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var event types.TurnEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			return nil, fmt.Errorf("unmarshal turn event: %w", err)
		}
		events = append(events, &event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan turn log: %w", err)
	}

	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

// Count returns the number of logged turns for the given session.
func (t *TurnLogStore) Count(_ context.Context, sessionID types.SessionID) (int64, error) {
	lock := t.getLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.Open(t.turnsPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open turn log: %w", err)
	}
	defer f.Close()

	var count int64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan turn log: %w", err)
	}
	return count, nil
}

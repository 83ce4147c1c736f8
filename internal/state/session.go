// internal/state/session.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/leasecraft/internal/types"
)

// SessionStore is a JSON-file-backed contract memory.
// Session records live in sessions/sessions.json; each session gets its own
// directory at sessions/<sessionID>/ for the turn log.
type SessionStore struct {
	root string
	mu   sync.RWMutex
}

// NewSessionStore creates a file-backed SessionStore rooted at the given directory.
func NewSessionStore(root string) *SessionStore {
	return &SessionStore{root: root}
}

func (s *SessionStore) indexPath() string {
	return filepath.Join(s.root, "sessions", "sessions.json")
}

func (s *SessionStore) sessionsDir() string {
	return filepath.Join(s.root, "sessions")
}

func (s *SessionStore) sessionDir(id types.SessionID) string {
	return filepath.Join(s.root, "sessions", string(id))
}

// loadIndex reads sessions.json and returns a map keyed by SessionID.
func (s *SessionStore) loadIndex() (map[types.SessionID]*types.SessionRecord, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[types.SessionID]*types.SessionRecord), nil
		}
		return nil, fmt.Errorf("read session index: %w", err)
	}

	var records []*types.SessionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal session index: %w", err)
	}

	index := make(map[types.SessionID]*types.SessionRecord, len(records))
	for _, rec := range records {
		index[rec.SessionID] = rec
	}
	return index, nil
}

// saveIndex converts the map to a slice, marshals with indentation, and writes atomically.
func (s *SessionStore) saveIndex(index map[types.SessionID]*types.SessionRecord) error {
	records := make([]*types.SessionRecord, 0, len(index))
	for _, rec := range index {
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session index: %w", err)
	}

	if err := os.MkdirAll(s.sessionsDir(), 0o755); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmp := s.indexPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := os.Rename(tmp, s.indexPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp index: %w", err)
	}
	return nil
}

// Resolve returns the record for the given session, creating an empty one on
// first use.
func (s *SessionStore) Resolve(_ context.Context, id types.SessionID) (*types.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	if existing, ok := index[id]; ok {
		return existing, nil
	}

	now := time.Now()
	rec := &types.SessionRecord{
		SessionID: id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	index[id] = rec

	if err := s.saveIndex(index); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.sessionDir(id), 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	return rec, nil
}

// Get returns the session with the given ID, or an error if it was never created.
func (s *SessionStore) Get(_ context.Context, id types.SessionID) (*types.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	rec, ok := index[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return rec, nil
}

// update loads, mutates, and saves one record under the write lock.
func (s *SessionStore) update(id types.SessionID, fn func(*types.SessionRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}

	rec, ok := index[id]
	if !ok {
		now := time.Now()
		rec = &types.SessionRecord{SessionID: id, CreatedAt: now}
		index[id] = rec
	}

	fn(rec)
	rec.UpdatedAt = time.Now()

	return s.saveIndex(index)
}

// SetContract replaces the session's contract slot.
func (s *SessionStore) SetContract(_ context.Context, id types.SessionID, text string) error {
	return s.update(id, func(rec *types.SessionRecord) {
		rec.Contract = text
	})
}

// ClearContract empties the contract slot but keeps the session.
func (s *SessionStore) ClearContract(_ context.Context, id types.SessionID) error {
	return s.update(id, func(rec *types.SessionRecord) {
		rec.Contract = ""
	})
}

// NextTurn increments and returns the session's turn counter.
func (s *SessionStore) NextTurn(_ context.Context, id types.SessionID) (int64, error) {
	var turn int64
	err := s.update(id, func(rec *types.SessionRecord) {
		rec.Turns++
		turn = rec.Turns
	})
	return turn, err
}

// List returns all session records.
func (s *SessionStore) List(_ context.Context) ([]*types.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	records := make([]*types.SessionRecord, 0, len(index))
	for _, rec := range index {
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes the session record and its directory.
func (s *SessionStore) Delete(_ context.Context, id types.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	if _, ok := index[id]; !ok {
		return nil
	}
	delete(index, id)

	if err := s.saveIndex(index); err != nil {
		return err
	}
	if err := os.RemoveAll(s.sessionDir(id)); err != nil {
		return fmt.Errorf("remove session dir: %w", err)
	}
	return nil
}

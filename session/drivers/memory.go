package drivers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/creastat/sessionstore"
	"github.com/creastat/sessionstore/session"
)

// MemoryStore implements session.Store using an in-memory map.
// One mutex guards the whole table. Records do not survive a restart and
// expired records stay in the map until deleted or swept by DeleteExpired.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[session.ID]session.Record
	now      func() time.Time
	logger   *slog.Logger
}

// NewMemoryStore creates a new in-memory session store.
// Only WithClock and WithLogger are meaningful here.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	config := newStoreConfig(opts)
	return &MemoryStore{
		sessions: make(map[session.ID]session.Record),
		now:      config.now,
		logger:   config.logger,
	}
}

// Save implements session.Store.
func (s *MemoryStore) Save(ctx context.Context, record *session.Record) error {
	if record == nil {
		return sessionstore.ErrInvalidRecord
	}
	clone := record.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[clone.ID] = clone
	return nil
}

// Load implements session.Store.
// Returns nil if the session is not found or has expired.
func (s *MemoryStore) Load(ctx context.Context, id session.ID) (*session.Session, error) {
	s.mu.Lock()
	record, exists := s.sessions[id]
	if exists {
		record = record.Clone()
	}
	s.mu.Unlock()

	if !exists {
		return nil, nil // Not found
	}
	if record.Expired(s.now()) {
		s.logger.Debug("session expired", "session_id", id.String())
		return nil, nil
	}
	return session.NewSession(record), nil
}

// Delete implements session.Store.
func (s *MemoryStore) Delete(ctx context.Context, id session.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// DeleteExpired implements session.ExpiredDeleter.
func (s *MemoryStore) DeleteExpired(ctx context.Context) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, record := range s.sessions {
		if record.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	s.logger.Debug("expired sessions deleted", "store", "memory", "count", n)
	return n, nil
}

// Len returns the number of stored records, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

package store

import (
	"sync"
	"time"

	"taxwizz/pkg/contracts/domain"
)

// StatusStore keeps the per-user status feed that backs the sync
// endpoints and the websocket broadcasts.
type StatusStore interface {
	// Push appends a status update, stamping the time when missing.
	Push(username string, update domain.StatusUpdate) domain.StatusUpdate

	// Latest returns the most recent update, if any.
	Latest(username string) (domain.StatusUpdate, bool)

	// History returns up to limit updates, newest first. limit <= 0
	// returns the full retained feed.
	History(username string, limit int) []domain.StatusUpdate
}

// MemoryStatusStore is an in-memory StatusStore trimming each user's
// feed to a fixed capacity.
type MemoryStatusStore struct {
	mu       sync.RWMutex
	feeds    map[string][]domain.StatusUpdate
	capacity int
}

// NewMemoryStatusStore creates a store keeping the last capacity updates
// per user.
func NewMemoryStatusStore(capacity int) *MemoryStatusStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryStatusStore{
		feeds:    make(map[string][]domain.StatusUpdate),
		capacity: capacity,
	}
}

// Push appends an update, trimming the oldest entries past capacity
func (s *MemoryStatusStore) Push(username string, update domain.StatusUpdate) domain.StatusUpdate {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	feed := append(s.feeds[username], update)
	if len(feed) > s.capacity {
		trimmed := make([]domain.StatusUpdate, s.capacity)
		copy(trimmed, feed[len(feed)-s.capacity:])
		feed = trimmed
	}
	s.feeds[username] = feed

	return update
}

// Latest returns the newest update for the user, if any
func (s *MemoryStatusStore) Latest(username string) (domain.StatusUpdate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feed := s.feeds[username]
	if len(feed) == 0 {
		return domain.StatusUpdate{}, false
	}
	return feed[len(feed)-1], true
}

// History returns up to limit updates, newest first
func (s *MemoryStatusStore) History(username string, limit int) []domain.StatusUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feed := s.feeds[username]
	n := len(feed)
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]domain.StatusUpdate, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, feed[i])
	}
	return result
}

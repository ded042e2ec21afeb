package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"taxwizz/pkg/contracts/domain"
)

// ActivityStore records and serves per-user activity history.
type ActivityStore interface {
	// Record appends an activity to the user's log, assigning an ID and
	// timestamp when missing.
	Record(username string, activity domain.Activity) domain.Activity

	// Recent returns up to limit activities, newest first. limit <= 0
	// returns the full retained log.
	Recent(username string, limit int) []domain.Activity

	// Count returns the number of retained activities for the user.
	Count(username string) int

	// CountByType returns retained activity counts grouped by type.
	CountByType(username string) map[domain.ActivityType]int

	// Last returns the most recent activity, if any.
	Last(username string) (domain.Activity, bool)
}

// MemoryActivityStore is an in-memory ActivityStore that trims each
// user's log to a fixed capacity.
type MemoryActivityStore struct {
	mu       sync.RWMutex
	entries  map[string][]domain.Activity
	capacity int
}

// NewMemoryActivityStore creates a store keeping the last capacity
// activities per user.
func NewMemoryActivityStore(capacity int) *MemoryActivityStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryActivityStore{
		entries:  make(map[string][]domain.Activity),
		capacity: capacity,
	}
}

// Record appends an activity, trimming the oldest entries past capacity
func (s *MemoryActivityStore) Record(username string, activity domain.Activity) domain.Activity {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := append(s.entries[username], activity)
	if len(log) > s.capacity {
		trimmed := make([]domain.Activity, s.capacity)
		copy(trimmed, log[len(log)-s.capacity:])
		log = trimmed
	}
	s.entries[username] = log

	return activity
}

// Recent returns up to limit activities, newest first
func (s *MemoryActivityStore) Recent(username string, limit int) []domain.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.entries[username]
	n := len(log)
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]domain.Activity, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, log[i])
	}
	return result
}

// Count returns the retained log length for the user
func (s *MemoryActivityStore) Count(username string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[username])
}

// CountByType groups retained activities by type
func (s *MemoryActivityStore) CountByType(username string) map[domain.ActivityType]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.ActivityType]int)
	for _, activity := range s.entries[username] {
		counts[activity.Type]++
	}
	return counts
}

// Last returns the newest activity for the user, if any
func (s *MemoryActivityStore) Last(username string) (domain.Activity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.entries[username]
	if len(log) == 0 {
		return domain.Activity{}, false
	}
	return log[len(log)-1], true
}

package history

import (
	"context"
	"sync"

	"github.com/prodscan/backend/internal/domain"
)

// defaultCapacity bounds the in-memory log when no capacity is configured
const defaultCapacity = 1000

// MemoryStore is a thread-safe bounded scan log. Once full, the oldest entry is dropped.
type MemoryStore struct {
	entries  []domain.HistoryEntry
	capacity int
	mutex    sync.RWMutex
}

// NewMemoryStore creates a new in-memory history store
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return &MemoryStore{
		entries:  make([]domain.HistoryEntry, 0, min(capacity, 64)),
		capacity: capacity,
	}
}

// Append stores an entry, evicting the oldest when the store is full
func (s *MemoryStore) Append(ctx context.Context, entry domain.HistoryEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.entries) >= s.capacity {
		// Shift instead of reslicing so the backing array does not grow forever
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.entries = append(s.entries, entry)

	return nil
}

// Recent returns up to limit entries, newest first
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}

	result := make([]domain.HistoryEntry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, s.entries[i])
	}

	return result, nil
}

// Size returns the current number of entries (for debugging/monitoring)
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries)
}

// Clear removes all entries
func (s *MemoryStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries = s.entries[:0]
}

// Close implements io.Closer; there is nothing to release
func (s *MemoryStore) Close() error {
	return nil
}

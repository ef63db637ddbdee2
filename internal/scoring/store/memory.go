package store

import (
	"context"
	"sort"
	"sync"

	"github.com/aadya-khanna/OpenScore/internal/scoring/ports"
)

// InMemory keeps score history in process. Used in tests and when no
// database is configured.
type InMemory struct {
	mu      sync.RWMutex
	records map[string][]ports.ScoreRecord
}

// NewInMemory creates an empty in-memory score store.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string][]ports.ScoreRecord)}
}

// Save appends a record to the user's history.
func (s *InMemory) Save(_ context.Context, record ports.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.UserID] = append(s.records[record.UserID], record)
	return nil
}

// ListByUser returns up to limit records, newest first.
func (s *InMemory) ListByUser(_ context.Context, userID string, limit int) ([]ports.ScoreRecord, error) {
	s.mu.RLock()
	out := make([]ports.ScoreRecord, len(s.records[userID]))
	copy(out, s.records[userID])
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ComputedAt.After(out[j].ComputedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Package store persists linked items and the records synced from them.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aadya-khanna/OpenScore/internal/financial"
)

type holdingKey struct {
	accountID  string
	securityID string
}

type liabilityKey struct {
	accountID string
	kind      string
}

// InMemory is a process-local store for tests and single-instance development.
type InMemory struct {
	mu           sync.RWMutex
	items        map[string]financial.Item
	accounts     map[string]financial.Account
	transactions map[string]financial.Transaction
	holdings     map[holdingKey]financial.Holding
	liabilities  map[liabilityKey]financial.Liability
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		items:        make(map[string]financial.Item),
		accounts:     make(map[string]financial.Account),
		transactions: make(map[string]financial.Transaction),
		holdings:     make(map[holdingKey]financial.Holding),
		liabilities:  make(map[liabilityKey]financial.Liability),
	}
}

func (s *InMemory) SaveItem(_ context.Context, item financial.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.items[item.ItemID]; ok {
		item.CreatedAt = existing.CreatedAt
		if item.LastSyncedAt == nil {
			item.LastSyncedAt = existing.LastSyncedAt
		}
	}
	s.items[item.ItemID] = item
	return nil
}

func (s *InMemory) ListItems(_ context.Context, userID string) ([]financial.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []financial.Item
	for _, it := range s.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	sortItems(out)
	return out, nil
}

func (s *InMemory) ListAllItems(_ context.Context) ([]financial.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]financial.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sortItems(out)
	return out, nil
}

func (s *InMemory) SaveSnapshot(_ context.Context, item financial.Item, snap financial.Snapshot, syncedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range snap.Accounts {
		s.accounts[a.ID] = a
	}
	for _, t := range snap.Transactions {
		s.transactions[t.ID] = t
	}
	for _, h := range snap.Holdings {
		s.holdings[holdingKey{h.AccountID, h.SecurityID}] = h
	}
	for _, l := range snap.Liabilities {
		s.liabilities[liabilityKey{l.AccountID, l.Kind}] = l
	}
	if it, ok := s.items[item.ItemID]; ok {
		at := syncedAt
		it.LastSyncedAt = &at
		it.UpdatedAt = syncedAt
		s.items[item.ItemID] = it
	}
	return nil
}

func (s *InMemory) ListAccounts(_ context.Context, userID string) ([]financial.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []financial.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListTransactions returns the user's transactions, newest date first. A
// limit of zero or less returns all of them.
func (s *InMemory) ListTransactions(_ context.Context, userID string, limit int) ([]financial.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []financial.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) ListHoldings(_ context.Context, userID string) ([]financial.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []financial.Holding
	for _, h := range s.holdings {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountID != out[j].AccountID {
			return out[i].AccountID < out[j].AccountID
		}
		return out[i].SecurityID < out[j].SecurityID
	})
	return out, nil
}

func (s *InMemory) ListLiabilities(_ context.Context, userID string) ([]financial.Liability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []financial.Liability
	for _, l := range s.liabilities {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountID != out[j].AccountID {
			return out[i].AccountID < out[j].AccountID
		}
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}

func sortItems(items []financial.Item) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ItemID < items[j].ItemID
	})
}

package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/elum-utils/chatfilter/models"
)

type entryKey struct {
	kind  models.EntryKind
	value string
}

// MemoryAdapter is an in-memory vocabulary store.
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[entryKey]models.Entry
}

// NewMemoryAdapter creates a memory storage adapter seeded with entries.
func NewMemoryAdapter(seed ...models.Entry) *MemoryAdapter {
	m := &MemoryAdapter{entries: make(map[entryKey]models.Entry, len(seed))}
	for _, e := range seed {
		if e.Validate() == nil {
			m.entries[entryKey{e.Kind, e.Value}] = e
		}
	}
	return m
}

// AddEntry inserts or recategorizes one entry.
func (m *MemoryAdapter) AddEntry(_ context.Context, entry models.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[entryKey{entry.Kind, entry.Value}] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryAdapter) RemoveEntry(_ context.Context, entry models.Entry) error {
	m.mu.Lock()
	delete(m.entries, entryKey{entry.Kind, entry.Value})
	m.mu.Unlock()
	return nil
}

func (m *MemoryAdapter) EntryExists(_ context.Context, entry models.Entry) (bool, error) {
	m.mu.RLock()
	_, ok := m.entries[entryKey{entry.Kind, entry.Value}]
	m.mu.RUnlock()
	return ok, nil
}

// Entries returns a snapshot of the stored entries in a stable order.
func (m *MemoryAdapter) Entries(_ context.Context) (models.Entries, error) {
	m.mu.RLock()
	flat := make([]models.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		flat = append(flat, e)
	}
	m.mu.RUnlock()

	sort.Slice(flat, func(i, j int) bool {
		if flat[i].Kind != flat[j].Kind {
			return flat[i].Kind < flat[j].Kind
		}
		return flat[i].Value < flat[j].Value
	})
	var out models.Entries
	for _, e := range flat {
		_ = out.Add(e)
	}
	return out, nil
}

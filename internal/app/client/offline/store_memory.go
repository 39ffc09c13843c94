package offline

import (
	"context"
	"sort"
	"sync"
)

type memoryEntry struct {
	seq uint64
	rec Record
}

// MemoryStore хранилище записей в памяти с индексами по статусу и группе
type MemoryStore struct {
	mu       sync.RWMutex
	seq      uint64
	records  map[string]*memoryEntry
	byStatus map[Status]map[string]struct{}
	byGroup  map[string]map[string]struct{}
	closed   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]*memoryEntry),
		byStatus: make(map[Status]map[string]struct{}),
		byGroup:  make(map[string]map[string]struct{}),
	}
}

func (m *MemoryStore) Put(_ context.Context, rec Record) error {
	if err := rec.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	entry, ok := m.records[rec.ID]
	if ok {
		m.unindex(entry.rec)
	} else {
		m.seq++
		entry = &memoryEntry{seq: m.seq}
		m.records[rec.ID] = entry
	}
	entry.rec = rec.Clone()
	m.index(entry.rec)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}
	entry, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return entry.rec.Clone(), nil
}

func (m *MemoryStore) List(_ context.Context, status Status) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	if status == "" {
		entries := make([]*memoryEntry, 0, len(m.records))
		for _, e := range m.records {
			entries = append(entries, e)
		}
		return collect(entries), nil
	}
	return m.fromIndex(m.byStatus[status]), nil
}

func (m *MemoryStore) ListByGroup(_ context.Context, groupKey string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	return m.fromIndex(m.byGroup[groupKey]), nil
}

func (m *MemoryStore) Count(_ context.Context, status Status) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	if status == "" {
		return len(m.records), nil
	}
	return len(m.byStatus[status]), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	return m.DeleteMany(ctx, []string{id})
}

func (m *MemoryStore) DeleteMany(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	for _, id := range ids {
		entry, ok := m.records[id]
		if !ok {
			continue
		}
		m.unindex(entry.rec)
		delete(m.records, id)
	}
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

func (m *MemoryStore) index(rec Record) {
	addTo(m.byStatus, rec.Status, rec.ID)
	addTo(m.byGroup, rec.GroupKey, rec.ID)
}

func (m *MemoryStore) unindex(rec Record) {
	removeFrom(m.byStatus, rec.Status, rec.ID)
	removeFrom(m.byGroup, rec.GroupKey, rec.ID)
}

func (m *MemoryStore) fromIndex(ids map[string]struct{}) []Record {
	entries := make([]*memoryEntry, 0, len(ids))
	for id := range ids {
		entries = append(entries, m.records[id])
	}
	return collect(entries)
}

// collect сортирует записи по порядку вставки и возвращает копии
func collect(entries []*memoryEntry) []Record {
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.rec.Clone())
	}
	return out
}

func addTo[K comparable](idx map[K]map[string]struct{}, key K, id string) {
	set, ok := idx[key]
	if !ok {
		set = make(map[string]struct{})
		idx[key] = set
	}
	set[id] = struct{}{}
}

func removeFrom[K comparable](idx map[K]map[string]struct{}, key K, id string) {
	set, ok := idx[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(idx, key)
	}
}

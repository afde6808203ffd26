package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"vinylapi/internal/catalog"
)

// Memory is an in-process Repository for tests and local development. Rows
// keep their insertion order, matching how the hosted store lists them.
type Memory struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]catalog.RawRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string]catalog.RawRecord)}
}

// Seed inserts raw rows as-is, keeping their ids.
func (m *Memory) Seed(raws []catalog.RawRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, raw := range raws {
		if _, exists := m.rows[raw.ID]; !exists {
			m.order = append(m.order, raw.ID)
		}
		m.rows[raw.ID] = raw
	}
}

func (m *Memory) List(ctx context.Context) ([]catalog.RawRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]catalog.RawRecord, 0, len(m.order))
	for _, id := range m.order {
		records = append(records, m.rows[id])
	}
	return records, nil
}

func (m *Memory) Create(ctx context.Context, f Fields) (catalog.RawRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := catalog.RawRecord{
		ID:     "rec" + uuid.NewString(),
		Fields: rowFields(f),
	}
	m.order = append(m.order, record.ID)
	m.rows[record.ID] = record
	return record, nil
}

func (m *Memory) Update(ctx context.Context, id string, f Fields) (catalog.RawRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rows[id]; !exists {
		return catalog.RawRecord{}, ErrNotFound
	}
	record := catalog.RawRecord{ID: id, Fields: rowFields(f)}
	m.rows[id] = record
	return record, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rows[id]; !exists {
		return ErrNotFound
	}
	delete(m.rows, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

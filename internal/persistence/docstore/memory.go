package docstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryDoc struct {
	raw       []byte
	createdAt time.Time
	updatedAt time.Time
	seq       uint64
}

// Memory keeps documents in process. Fields are round-tripped through JSON
// so callers observe the same types as with the SQL backends.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryDoc
	seq         uint64
	now         func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]*memoryDoc), now: time.Now}
}

func (m *Memory) List(_ context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type entry struct {
		id  string
		doc *memoryDoc
	}
	entries := make([]entry, 0, len(m.collections[collection]))
	for id, doc := range m.collections[collection] {
		entries = append(entries, entry{id: id, doc: doc})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].doc, entries[j].doc
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.After(b.createdAt)
		}
		return a.seq > b.seq
	})

	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		doc, err := e.doc.toDocument(e.id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	doc, err := stored.toDocument(id)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (m *Memory) Insert(_ context.Context, collection string, fields Fields) (string, error) {
	raw, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]*memoryDoc)
		m.collections[collection] = docs
	}
	now := m.now().UTC()
	m.seq++
	id := uuid.NewString()
	docs[id] = &memoryDoc{raw: raw, createdAt: now, updatedAt: now, seq: m.seq}
	return id, nil
}

func (m *Memory) Patch(_ context.Context, collection, id string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	current, err := decodeFields(stored.raw)
	if err != nil {
		return err
	}
	for key, val := range fields {
		current[key] = val
	}
	raw, err := encodeFields(current)
	if err != nil {
		return err
	}
	stored.raw = raw
	stored.updatedAt = m.now().UTC()
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func (d *memoryDoc) toDocument(id string) (Document, error) {
	fields, err := decodeFields(d.raw)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Fields: fields, CreatedAt: d.createdAt, UpdatedAt: d.updatedAt}, nil
}

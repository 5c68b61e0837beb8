package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store used when the database is unavailable and
// as the test double. Entries do not survive the process.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
	prefs   map[string]string
}

type memEntry struct {
	fields  Fields
	payload []byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*memEntry),
		prefs:   make(map[string]string),
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Put(ctx context.Context, id string, fields Fields, payload []byte, opts PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		e = &memEntry{fields: Fields{}}
		m.entries[id] = e
	}
	e.fields = MergeFields(e.fields, fields)
	if opts.IncludePayload {
		e.payload = append([]byte(nil), payload...)
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (Stored, error) {
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return Stored{}, ErrNotFound
	}
	return m.snapshot(id, e), nil
}

func (m *Memory) GetAll(ctx context.Context) ([]Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Stored, 0, len(m.entries))
	for id, e := range m.entries {
		out = append(out, m.snapshot(id, e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*memEntry)
	return nil
}

func (m *Memory) SetPreference(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[key] = value
	return nil
}

func (m *Memory) Preference(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.prefs[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Close() error { return nil }

// snapshot deep-copies an entry so callers can't mutate shared state.
// Caller holds at least a read lock.
func (m *Memory) snapshot(id string, e *memEntry) Stored {
	fields := make(Fields, len(e.fields))
	for k, v := range e.fields {
		fields[k] = v
	}
	var payload []byte
	if e.payload != nil {
		payload = append([]byte(nil), e.payload...)
	}
	return Stored{ID: id, Fields: fields, Payload: payload}
}

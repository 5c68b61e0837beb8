// Package store persists window records and session preferences as
// key-value entries. Records travel as JSON field maps so that partial
// updates merge field-by-field instead of overwriting the whole entry.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no entry exists for the requested id or
// preference key.
var ErrNotFound = errors.New("store: not found")

// Fields is a window record as a JSON object. Values are the usual
// encoding/json shapes: string, float64, bool, []any, map[string]any, nil.
type Fields = map[string]any

// Stored is one persisted window entry.
type Stored struct {
	ID      string
	Fields  Fields
	Payload []byte
}

// PutOptions controls which parts of an entry a Put call touches.
type PutOptions struct {
	// IncludePayload replaces the stored payload with the one supplied,
	// even when nil. When false the existing payload is preserved.
	IncludePayload bool
}

// Store is the persistence contract. Implementations merge Put fields
// into the existing entry rather than replacing it.
type Store interface {
	// Put merges fields into the entry for id, creating it if absent.
	Put(ctx context.Context, id string, fields Fields, payload []byte, opts PutOptions) error

	// Get returns the entry for id, or ErrNotFound.
	Get(ctx context.Context, id string) (Stored, error)

	// GetAll returns every entry, ordered by id.
	GetAll(ctx context.Context) ([]Stored, error)

	// Remove deletes the entry for id. Removing a missing id is not an
	// error.
	Remove(ctx context.Context, id string) error

	// Clear deletes every window entry. Preferences are untouched.
	Clear(ctx context.Context) error

	// SetPreference stores a session-level preference.
	SetPreference(ctx context.Context, key, value string) error

	// Preference returns a stored preference, or ErrNotFound.
	Preference(ctx context.Context, key string) (string, error)

	Close() error
}

// MergeFields overlays update onto existing, returning a fresh map.
// Top-level keys from update win; keys absent from update survive from
// existing. A nil value in update stores JSON null rather than deleting
// the key, matching plain JSON object semantics.
func MergeFields(existing, update Fields) Fields {
	out := make(Fields, len(existing)+len(update))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range update {
		out[k] = v
	}
	return out
}

// Package snapshot serializes the whole session to a portable document
// and back. Snapshots are JSON, optionally gzip-compressed, with binary
// payloads carried as base64 so the format survives any transport that
// can move text.
package snapshot

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/store"
)

// Version is the current snapshot format version. Import refuses any
// other version outright.
const Version = 1

var tracer = otel.Tracer("folio/snapshot")

// ErrMalformedSnapshot is returned when the input is not a snapshot at
// all: truncated gzip, invalid JSON, or a missing version field.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// ErrIncompatibleSnapshot is returned when the snapshot declares a
// version this build does not understand. The store is left untouched.
var ErrIncompatibleSnapshot = errors.New("incompatible snapshot version")

// ExportError reports a window that cannot be exported because its
// document bytes are missing from the store. Nothing is written; a
// snapshot must carry every payload its windows reference.
type ExportError struct {
	WindowID string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("window %s references a payload that is not in the store", e.WindowID)
}

// CorruptPayloadError reports one window whose payload could not be
// decoded. The window is skipped; the rest of the import proceeds.
type CorruptPayloadError struct {
	WindowID string
	Err      error
}

func (e *CorruptPayloadError) Error() string {
	return fmt.Sprintf("corrupt payload for window %s: %v", e.WindowID, e.Err)
}

func (e *CorruptPayloadError) Unwrap() error { return e.Err }

// document is the on-disk snapshot shape.
type document struct {
	Version     int               `json:"version"`
	ExportedAt  time.Time         `json:"exportedAt"`
	Preferences map[string]string `json:"preferences,omitempty"`
	Windows     []windowEntry     `json:"windows"`
}

type windowEntry struct {
	Fields  store.Fields `json:"fields"`
	Payload string       `json:"payload,omitempty"` // base64
}

// ExportOptions controls snapshot output.
type ExportOptions struct {
	// Compress gzips the output. Import auto-detects either form.
	Compress bool

	// Preferences are session preferences to embed, keyed by name.
	Preferences map[string]string

	// WindowIDs limits the export to the named windows. Empty means all.
	WindowIDs []string
}

func (o ExportOptions) includes(id string) bool {
	if len(o.WindowIDs) == 0 {
		return true
	}
	for _, want := range o.WindowIDs {
		if want == id {
			return true
		}
	}
	return false
}

// Export writes every stored window to w as a version-1 snapshot. The
// store is read once up front so the snapshot is a consistent copy even
// if windows keep changing during the write.
func Export(ctx context.Context, s store.Store, w io.Writer, opts ExportOptions) error {
	ctx, span := tracer.Start(ctx, "snapshot.Export")
	defer span.End()

	entries, err := s.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("reading store for export: %w", err)
	}

	doc := document{
		Version:     Version,
		ExportedAt:  time.Now().UTC(),
		Preferences: opts.Preferences,
		Windows:     make([]windowEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		if !opts.includes(entry.ID) {
			continue
		}
		we := windowEntry{Fields: entry.Fields}
		if len(entry.Payload) > 0 {
			we.Payload = base64.StdEncoding.EncodeToString(entry.Payload)
		} else if ref, _ := entry.Fields["payloadRef"].(string); ref != "" {
			// The record claims document bytes the store does not hold;
			// a snapshot missing them would not restore elsewhere.
			return &ExportError{WindowID: entry.ID}
		}
		doc.Windows = append(doc.Windows, we)
	}
	span.SetAttributes(attribute.Int("window.count", len(doc.Windows)))

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	out := w
	var gz *gzip.Writer
	if opts.Compress {
		gz = gzip.NewWriter(w)
		out = gz
	}
	if _, err := out.Write(encoded); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("finishing compressed snapshot: %w", err)
		}
	}

	log.Info(log.CatSnapshot, "snapshot exported", "windows", len(doc.Windows), "compressed", opts.Compress)
	return nil
}

// ImportResult summarizes what an import did.
type ImportResult struct {
	Windows     int
	Preferences int
	// Skipped lists windows dropped because their payload was corrupt.
	Skipped []CorruptPayloadError
}

// Import reads a snapshot from r and writes its windows into s,
// replacing entries with matching ids. Compression is detected from the
// stream itself. Version mismatches and malformed input fail before the
// store is touched; individual corrupt payloads are skipped and reported
// in the result.
func Import(ctx context.Context, s store.Store, r io.Reader) (ImportResult, error) {
	ctx, span := tracer.Start(ctx, "snapshot.Import")
	defer span.End()

	raw, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("reading snapshot: %w", err)
	}
	if isGzip(raw) {
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return ImportResult{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		raw, err = io.ReadAll(gz)
		if err != nil {
			return ImportResult{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if doc.Version == 0 {
		return ImportResult{}, fmt.Errorf("%w: missing version", ErrMalformedSnapshot)
	}
	if doc.Version != Version {
		return ImportResult{}, fmt.Errorf("%w: got %d, want %d", ErrIncompatibleSnapshot, doc.Version, Version)
	}

	var result ImportResult
	for _, we := range doc.Windows {
		id, _ := we.Fields["id"].(string)
		if id == "" {
			result.Skipped = append(result.Skipped, CorruptPayloadError{
				WindowID: "(unknown)",
				Err:      errors.New("window entry has no id"),
			})
			continue
		}

		var payload []byte
		if we.Payload != "" {
			payload, err = base64.StdEncoding.DecodeString(we.Payload)
			if err != nil {
				cpe := CorruptPayloadError{WindowID: id, Err: err}
				log.Warn(log.CatSnapshot, "skipping window with corrupt payload", "id", id, "err", err.Error())
				result.Skipped = append(result.Skipped, cpe)
				continue
			}
		}

		if err := s.Put(ctx, id, we.Fields, payload, store.PutOptions{IncludePayload: true}); err != nil {
			return result, fmt.Errorf("importing window %s: %w", id, err)
		}
		result.Windows++
	}

	for key, value := range doc.Preferences {
		if err := s.SetPreference(ctx, key, value); err != nil {
			return result, fmt.Errorf("importing preference %s: %w", key, err)
		}
		result.Preferences++
	}

	span.SetAttributes(
		attribute.Int("window.imported", result.Windows),
		attribute.Int("window.skipped", len(result.Skipped)),
	)
	log.Info(log.CatSnapshot, "snapshot imported",
		"windows", result.Windows, "skipped", len(result.Skipped), "preferences", result.Preferences)
	return result, nil
}

// gzip streams start with the two magic bytes 0x1f 0x8b.
func isGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

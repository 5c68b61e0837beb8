package store

import (
	"context"

	"github.com/zjrosen/folio/internal/cachemanager"
)

// Cached decorates a Store with a payload cache. Field reads and writes
// pass straight through; payload reads are served from the cache when
// possible, and writes keep it coherent.
type Cached struct {
	inner Store
	cache *cachemanager.Manager
}

// NewCached wraps inner with the payload cache.
func NewCached(inner Store, cache *cachemanager.Manager) *Cached {
	return &Cached{inner: inner, cache: cache}
}

var _ Store = (*Cached)(nil)

func (c *Cached) Put(ctx context.Context, id string, fields Fields, payload []byte, opts PutOptions) error {
	if err := c.inner.Put(ctx, id, fields, payload, opts); err != nil {
		return err
	}
	if opts.IncludePayload {
		if payload == nil {
			c.cache.Invalidate(id)
		} else {
			c.cache.SetPayload(id, payload)
		}
	}
	return nil
}

func (c *Cached) Get(ctx context.Context, id string) (Stored, error) {
	entry, err := c.inner.Get(ctx, id)
	if err != nil {
		return Stored{}, err
	}
	if entry.Payload == nil {
		if payload, ok := c.cache.GetPayload(id); ok {
			entry.Payload = payload
		}
	} else {
		c.cache.SetPayload(id, entry.Payload)
	}
	return entry, nil
}

func (c *Cached) GetAll(ctx context.Context) ([]Stored, error) {
	entries, err := c.inner.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Payload != nil {
			c.cache.SetPayload(entries[i].ID, entries[i].Payload)
		}
	}
	return entries, nil
}

func (c *Cached) Remove(ctx context.Context, id string) error {
	c.cache.Invalidate(id)
	return c.inner.Remove(ctx, id)
}

func (c *Cached) Clear(ctx context.Context) error {
	c.cache.Reset()
	return c.inner.Clear(ctx)
}

func (c *Cached) SetPreference(ctx context.Context, key, value string) error {
	return c.inner.SetPreference(ctx, key, value)
}

func (c *Cached) Preference(ctx context.Context, key string) (string, error) {
	return c.inner.Preference(ctx, key)
}

func (c *Cached) Close() error { return c.inner.Close() }

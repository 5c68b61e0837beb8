// Package cachemanager wraps an expiring in-memory cache for document
// payloads. Payloads can be large; caching them avoids re-reading the
// database every time a window is duplicated or exported.
package cachemanager

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/folio/internal/log"
)

const (
	defaultExpiration = 10 * time.Minute
	cleanupInterval   = 15 * time.Minute
)

// Manager is a typed facade over the expiring cache.
type Manager struct {
	cache *gocache.Cache
}

// New returns a manager with the default expiration policy.
func New() *Manager {
	return &Manager{cache: gocache.New(defaultExpiration, cleanupInterval)}
}

// GetPayload returns the cached payload for id, if present.
func (m *Manager) GetPayload(id string) ([]byte, bool) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, false
	}
	payload, ok := v.([]byte)
	return payload, ok
}

// SetPayload caches a payload under id with the default expiration.
func (m *Manager) SetPayload(id string, payload []byte) {
	m.cache.Set(id, payload, gocache.DefaultExpiration)
	log.Debug(log.CatCache, "payload cached", "id", id, "bytes", len(payload))
}

// Invalidate drops the cached payload for id.
func (m *Manager) Invalidate(id string) {
	m.cache.Delete(id)
}

// Reset drops every cached payload.
func (m *Manager) Reset() {
	m.cache.Flush()
}

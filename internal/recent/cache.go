// Package recent keeps the bounded list of documents the user has uploaded
// successfully during the current session, most recent first.
package recent

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 5

// ErrNotFound is returned when an entry id is not in the cache.
var ErrNotFound = errors.New("recent document not found")

// Entry is a single remembered upload.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Cache is a deduplicated, size-capped list of entries ordered by the time
// they were last recorded. Reads never reorder it.
type Cache struct {
	mu      sync.RWMutex
	limit   int
	entries []Entry
	newID   func() string
}

// New creates a cache holding at most limit entries. A non-positive limit
// falls back to DefaultLimit.
func New(limit int) *Cache {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Cache{
		limit: limit,
		newID: uuid.NewString,
	}
}

// RecordSuccess remembers a successful upload of name. Any older entry with
// the same name is dropped so the name moves to the front, and the tail is
// trimmed to the limit.
func (c *Cache) RecordSuccess(name string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{ID: c.newID(), Name: name}

	next := make([]Entry, 0, c.limit)
	next = append(next, entry)
	for _, e := range c.entries {
		if e.Name == name {
			continue
		}
		if len(next) == c.limit {
			break
		}
		next = append(next, e)
	}
	c.entries = next
	return entry
}

// Entries returns a copy of the cache contents, most recent first.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Get looks up an entry by id.
func (c *Cache) Get(id string) (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Limit returns the configured capacity.
func (c *Cache) Limit() int { return c.limit }

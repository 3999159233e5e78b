// Package cache holds the in-process lookup tables for TeamDynamix reference
// data. Each table is filled lazily by one bulk fetch and answers repeated
// lookups by ID or by partial name.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// FillFunc fetches every entry of a table in server order.
type FillFunc[T tdx.Named] func(ctx context.Context) ([]T, error)

// SearchFunc resolves one key against the service.
type SearchFunc[T tdx.Named] func(ctx context.Context) (T, error)

// Table memoizes lookups of one kind of reference data. A Table is safe for
// concurrent use; concurrent fills may fetch twice but never tear.
type Table[T tdx.Named] struct {
	mu      sync.Mutex
	kind    string
	memo    map[string]T
	entries []T
	filled  bool
	opts    *Options
}

// NewTable creates a table of kind and registers it with the registry.
func NewTable[T tdx.Named](registry *Registry, kind string) *Table[T] {
	t := &Table[T]{
		kind: kind,
		memo: make(map[string]T),
		opts: registry.opts,
	}

	registry.register(t)

	return t
}

// Kind names the reference data held by the table.
func (t *Table[T]) Kind() string {
	return t.kind
}

// Get returns a memoized entry.
func (t *Table[T]) Get(key string) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.memo[normalize(key)]

	return v, ok
}

// Put memoizes value under key. It is a no-op when caching is disabled.
func (t *Table[T]) Put(key string, value T) {
	if !t.opts.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.memo[normalize(key)] = value
}

// Lookup resolves key by ID or partial name against the bulk entries, which
// are fetched with fill on first use. A miss is a *tdx.NotFoundError.
func (t *Table[T]) Lookup(ctx context.Context, key string, fill FillFunc[T]) (T, error) {
	var zero T

	if v, ok := t.Get(key); ok {
		return v, nil
	}

	entries, err := t.Entries(ctx, fill)
	if err != nil {
		return zero, err
	}

	v, ok := Match(entries, key)
	if !ok {
		return zero, &tdx.NotFoundError{Kind: t.kind, Key: key}
	}

	t.Put(key, v)

	return v, nil
}

// Remember returns the memoized entry for key, or runs search and memoizes
// its result under both key and the entry's name.
func (t *Table[T]) Remember(ctx context.Context, key string, search SearchFunc[T]) (T, error) {
	if v, ok := t.Get(key); ok {
		return v, nil
	}

	v, err := search(ctx)
	if err != nil {
		var zero T

		return zero, err
	}

	t.Put(key, v)

	if name := v.LookupName(); name != "" {
		t.Put(name, v)
	}

	return v, nil
}

// Entries returns the bulk entries in server order, filling the table on
// first use. With caching disabled every call fetches.
func (t *Table[T]) Entries(ctx context.Context, fill FillFunc[T]) ([]T, error) {
	if !t.opts.Enabled {
		return fill(ctx)
	}

	t.mu.Lock()
	if t.filled {
		entries := t.entries
		t.mu.Unlock()

		return entries, nil
	}
	t.mu.Unlock()

	entries, ok := t.loadShared(ctx)
	if !ok {
		fetched, err := fill(ctx)
		if err != nil {
			return nil, err
		}

		entries = fetched
		t.storeShared(ctx, entries)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.filled {
		t.entries = entries
		t.filled = true
	}

	return t.entries, nil
}

// Reset drops every memoized and bulk entry.
func (t *Table[T]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.memo = make(map[string]T)
	t.entries = nil
	t.filled = false
}

// Len returns the number of memoized keys.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.memo)
}

func (t *Table[T]) sharedKey() string {
	return t.opts.KeyPrefix + t.kind
}

func (t *Table[T]) loadShared(ctx context.Context) ([]T, bool) {
	if t.opts.Store == nil {
		return nil, false
	}

	entry, err := t.opts.Store.Get(ctx, t.sharedKey())
	if err != nil {
		if !errors.Is(err, tdx.ErrCacheKeyNotFound) && !errors.Is(err, tdx.ErrCacheEntryExpired) &&
			!errors.Is(err, tdx.ErrCacheDisabled) {
			t.opts.warn("Shared cache read failed", t.kind, err)
		}

		return nil, false
	}

	var entries []T
	if err := json.Unmarshal(entry.Data, &entries); err != nil {
		t.opts.warn("Shared cache entry is unreadable", t.kind, err)

		return nil, false
	}

	return entries, true
}

func (t *Table[T]) storeShared(ctx context.Context, entries []T) {
	if t.opts.Store == nil {
		return
	}

	data, err := json.Marshal(entries)
	if err != nil {
		t.opts.warn("Failed to encode shared cache entry", t.kind, err)

		return
	}

	entry := &tdx.CacheEntry{Data: data, Kind: t.kind}
	if t.opts.TTL > 0 {
		entry.ExpiresAt = time.Now().Add(t.opts.TTL)
	}

	if err := t.opts.Store.Set(ctx, t.sharedKey(), entry); err != nil {
		t.opts.warn("Shared cache write failed", t.kind, err)
	}
}

// Match returns the entry whose ID equals key, or else the first entry whose
// name contains key case-insensitively.
func Match[T tdx.Named](entries []T, key string) (T, bool) {
	key = strings.TrimSpace(key)

	for _, e := range entries {
		if e.LookupID() == key {
			return e, true
		}
	}

	needle := strings.ToLower(key)

	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.LookupName()), needle) {
			return e, true
		}
	}

	var zero T

	return zero, false
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

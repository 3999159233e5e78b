package cache

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// Options configures every table of a registry.
type Options struct {
	// Enabled retains lookups. When false every lookup fetches.
	Enabled bool
	// Store is an optional second tier shared across processes.
	Store tdx.Cache
	// TTL applies to bulk fills written to Store.
	TTL time.Duration
	// KeyPrefix namespaces Store keys.
	KeyPrefix string
	Logger    tdx.Logger
}

// TenantPrefix scopes prefix to one TeamDynamix tenant and application pair,
// so clients of different instances, or of sandbox and production, can share
// a store. The result looks like tdx:host/SBTDWebApi/api:40:50:.
func TenantPrefix(prefix, baseURL string, ticketAppID, assetAppID int) string {
	if prefix == "" {
		prefix = constants.CacheKeyPrefix
	}

	tenant := strings.TrimRight(baseURL, "/")
	if u, err := url.Parse(tenant); err == nil && u.Host != "" {
		tenant = strings.ToLower(u.Host) + u.Path
	}

	return prefix + tenant + ":" + strconv.Itoa(ticketAppID) + ":" + strconv.Itoa(assetAppID) + ":"
}

func (o *Options) warn(msg, kind string, err error) {
	if o.Logger == nil {
		return
	}

	o.Logger.Warn(msg, map[string]interface{}{"kind": kind, "error": err})
}

type resetter interface {
	Reset()
}

// Registry owns the tables of one client.
type Registry struct {
	mu     sync.Mutex
	opts   *Options
	tables []resetter
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = constants.CacheKeyPrefix
	}

	if opts.TTL == 0 {
		opts.TTL = constants.DefaultCacheTTL
	}

	return &Registry{opts: &opts}
}

func (r *Registry) register(t resetter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tables = append(r.tables, t)
}

// InvalidateAll empties every table and clears the shared store.
func (r *Registry) InvalidateAll(ctx context.Context) error {
	r.mu.Lock()
	tables := append([]resetter(nil), r.tables...)
	r.mu.Unlock()

	for _, t := range tables {
		t.Reset()
	}

	if r.opts.Store != nil {
		if err := r.opts.Store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear shared cache: %w", err)
		}
	}

	return nil
}

// Keyed holds one table per scope, such as custom attributes per component.
type Keyed[T tdx.Named] struct {
	mu       sync.Mutex
	registry *Registry
	kind     string
	tables   map[string]*Table[T]
}

// NewKeyed creates a family of tables named kind:scope.
func NewKeyed[T tdx.Named](registry *Registry, kind string) *Keyed[T] {
	return &Keyed[T]{
		registry: registry,
		kind:     kind,
		tables:   make(map[string]*Table[T]),
	}
}

// For returns the table for scope, creating it on first use.
func (k *Keyed[T]) For(scope string) *Table[T] {
	k.mu.Lock()
	defer k.mu.Unlock()

	if t, ok := k.tables[scope]; ok {
		return t
	}

	t := NewTable[T](k.registry, k.kind+":"+scope)
	k.tables[scope] = t

	return t
}

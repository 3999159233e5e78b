package tdx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/nats-io/nats.go"
)

// NATSKVConfig configures the NATS JetStream key-value cache.
type NATSKVConfig struct {
	// URL of the NATS server, e.g. nats://127.0.0.1:4222
	URL string

	// Bucket is the KV bucket name. Created if missing.
	Bucket string

	// TTL applied to the bucket when it is created
	TTL time.Duration

	// KeyPrefix selects the keys removed by Clear. Empty clears the bucket.
	KeyPrefix string

	// Conn is an existing connection. URL is ignored when set.
	Conn *nats.Conn
}

// NATSKVCache stores cache entries in a JetStream KV bucket so several client
// processes can share reference data fills.
type NATSKVCache struct {
	conn   *nats.Conn
	owned  bool
	kv     nats.KeyValue
	prefix string
}

// NewNATSKVCache connects to NATS and binds or creates the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	conn := config.Conn
	owned := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, nats.Name("tdx-client"))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
		}

		owned = true
	}

	js, err := conn.JetStream()
	if err != nil {
		closeIfOwned(conn, owned)

		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucket,
			Description: "TeamDynamix reference data",
			TTL:         config.TTL,
		})
	}

	if err != nil {
		closeIfOwned(conn, owned)

		return nil, fmt.Errorf("binding KV bucket %s: %w", bucket, err)
	}

	cache := NewNATSKVCacheFromKeyValue(kv, config.KeyPrefix)
	cache.conn = conn
	cache.owned = owned

	return cache, nil
}

// NewNATSKVCacheFromKeyValue wraps an existing bucket handle. Clear removes
// only keys under prefix.
func NewNATSKVCacheFromKeyValue(kv nats.KeyValue, prefix string) *NATSKVCache {
	return &NATSKVCache{kv: kv, prefix: natsKey(prefix)}
}

// Get returns the entry for key.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	item, err := c.kv.Get(natsKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrCacheKeyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s from NATS KV: %w", key, err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(item.Value(), &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}

	if entry.Expired(time.Now()) {
		_ = c.Delete(ctx, key)

		return nil, ErrCacheEntryExpired
	}

	return &entry, nil
}

// Set stores entry under key.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	if _, err := c.kv.Put(natsKey(key), data); err != nil {
		return fmt.Errorf("writing %s to NATS KV: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(natsKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s from NATS KV: %w", key, err)
	}

	return nil
}

// Clear purges every key under the cache's prefix.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("listing NATS KV keys: %w", err)
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, c.prefix) {
			continue
		}

		if err := c.kv.Purge(key); err != nil {
			return fmt.Errorf("purging %s from NATS KV: %w", key, err)
		}
	}

	return nil
}

// Has reports whether key is present and not expired.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close drains the connection if the cache opened it.
func (c *NATSKVCache) Close() error {
	if c.owned && c.conn != nil {
		return c.conn.Drain()
	}

	return nil
}

func closeIfOwned(conn *nats.Conn, owned bool) {
	if owned {
		conn.Close()
	}
}

// natsKey maps a cache key onto the KV key alphabet.
func natsKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '/' || r == '=' || r == '.':
			return r
		case r == ':':
			return '.'
		default:
			return '_'
		}
	}, key)
}

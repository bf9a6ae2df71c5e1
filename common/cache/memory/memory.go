package memory

import (
	"context"
	"sync/atomic"
	"time"

	"jobbots/common/cache"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is an in-process cache.Cache used when no Redis is configured.
// Entries live at most DefaultTTL; a shorter per-call ttl is honored on
// Get, a longer one is capped.
type Cache struct {
	items  *expirable.LRU[string, entry]
	ttl    time.Duration
	now    func() time.Time
	closed atomic.Bool
}

func New(opts cache.Options) *Cache {
	defaults := cache.DefaultOptions()
	if opts.DefaultTTL == 0 {
		opts.DefaultTTL = defaults.DefaultTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaults.MaxEntries
	}
	return &Cache{
		items: expirable.NewLRU[string, entry](opts.MaxEntries, nil, opts.DefaultTTL),
		ttl:   opts.DefaultTTL,
		now:   time.Now,
	}
}

func (c *Cache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return cache.ErrInvalidKey
	}
	if c.closed.Load() {
		return cache.ErrClosed
	}
	data, err := cache.Encode(value)
	if err != nil {
		return err
	}
	if ttl <= 0 || ttl > c.ttl {
		ttl = c.ttl
	}
	c.items.Add(key, entry{data: data, expiresAt: c.now().Add(ttl)})
	return nil
}

func (c *Cache) Get(_ context.Context, key string, value interface{}) error {
	if key == "" {
		return cache.ErrInvalidKey
	}
	if c.closed.Load() {
		return cache.ErrClosed
	}
	e, ok := c.items.Get(key)
	if !ok {
		return cache.ErrNotFound
	}
	if !c.now().Before(e.expiresAt) {
		c.items.Remove(key)
		return cache.ErrNotFound
	}
	return cache.Decode(e.data, value)
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.items.Remove(key)
	return nil
}

func (c *Cache) Clear(_ context.Context) error {
	c.items.Purge()
	return nil
}

func (c *Cache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.items.Purge()
	return nil
}

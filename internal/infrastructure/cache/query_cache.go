package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

const (
	defaultSize       = 4096
	listenerQueueSize = 16
)

// InvalidationRecorder counts invalidated query names.
type InvalidationRecorder interface {
	CacheInvalidated(name string, remote bool)
}

type Options struct {
	Size     int
	TTL      time.Duration
	Origin   string
	Bus      ports.InvalidationBus
	Recorder InvalidationRecorder
}

// QueryCache holds view query results per owner and query name. Entries are
// only ever dropped, never patched. Every invalidation is fanned out to local
// listeners and, when a bus is configured, to the other replicas.
type QueryCache struct {
	entries  *expirable.LRU[string, any]
	origin   string
	bus      ports.InvalidationBus
	recorder InvalidationRecorder

	// loadMu orders Set against invalidation; pending holds the token of the
	// latest load per key and is emptied by Set or Invalidate.
	loadMu    sync.Mutex
	nextToken uint64
	pending   map[string]uint64

	mu        sync.Mutex
	listeners map[string]map[chan domain.Invalidation]struct{}
}

func New(opts Options) *QueryCache {
	size := opts.Size
	if size <= 0 {
		size = defaultSize
	}
	return &QueryCache{
		entries:   expirable.NewLRU[string, any](size, nil, opts.TTL),
		origin:    opts.Origin,
		bus:       opts.Bus,
		recorder:  opts.Recorder,
		pending:   make(map[string]uint64),
		listeners: make(map[string]map[chan domain.Invalidation]struct{}),
	}
}

var _ ports.QueryCache = (*QueryCache)(nil)

func (c *QueryCache) Get(key domain.QueryKey) (any, bool) {
	return c.entries.Get(key.String())
}

// Reserve starts a load of key. A later Reserve or Invalidate of the same key
// voids the returned token.
func (c *QueryCache) Reserve(key domain.QueryKey) uint64 {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	c.nextToken++
	c.pending[key.String()] = c.nextToken
	return c.nextToken
}

// Set stores value when token is still the current load of key and reports
// whether it did.
func (c *QueryCache) Set(key domain.QueryKey, value any, token uint64) bool {
	k := key.String()
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if current, ok := c.pending[k]; !ok || current != token {
		return false
	}
	delete(c.pending, k)
	c.entries.Add(k, value)
	return true
}

func (c *QueryCache) Invalidate(ctx context.Context, owner string, names ...string) {
	if len(names) == 0 {
		return
	}
	inv := domain.Invalidation{Owner: owner, Keys: names, Origin: c.origin}
	c.apply(inv, false)

	if c.bus == nil {
		return
	}
	if err := c.bus.PublishInvalidation(ctx, inv); err != nil {
		slog.Warn("cache_invalidation_publish_failed", "owner_id", owner, "keys", names, "error", err)
	}
}

// HandleRemote applies an invalidation received from another replica.
func (c *QueryCache) HandleRemote(_ context.Context, inv domain.Invalidation) error {
	if inv.Origin != "" && inv.Origin == c.origin {
		return nil
	}
	c.apply(inv, true)
	return nil
}

// Listen streams the invalidations of one owner until cancel is called.
// A listener that falls behind misses events rather than blocking writers.
func (c *QueryCache) Listen(owner string) (<-chan domain.Invalidation, func()) {
	ch := make(chan domain.Invalidation, listenerQueueSize)

	c.mu.Lock()
	if c.listeners[owner] == nil {
		c.listeners[owner] = make(map[chan domain.Invalidation]struct{})
	}
	c.listeners[owner][ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners[owner], ch)
			if len(c.listeners[owner]) == 0 {
				delete(c.listeners, owner)
			}
			c.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (c *QueryCache) apply(inv domain.Invalidation, remote bool) {
	c.loadMu.Lock()
	for _, name := range inv.Keys {
		k := domain.QueryKey{Owner: inv.Owner, Name: name}.String()
		delete(c.pending, k)
		c.entries.Remove(k)
	}
	c.loadMu.Unlock()

	for _, name := range inv.Keys {
		if c.recorder != nil {
			c.recorder.CacheInvalidated(name, remote)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.listeners[inv.Owner] {
		select {
		case ch <- inv:
		default:
			slog.Warn("cache_listener_lagging", "owner_id", inv.Owner)
		}
	}
}

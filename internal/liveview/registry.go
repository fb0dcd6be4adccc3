package liveview

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"guiche-backend/internal/upstream"
)

// Registry manages per-scope dashboard pollers. A poller is started on the
// first request for its scope and torn down once no consumer has asked for
// that scope within the idle TTL, the server-side equivalent of clearing the
// interval when the consuming view unmounts.
type Registry struct {
	source     Source
	interval   time.Duration
	idleTTL    time.Duration
	historyCap int

	ctx     context.Context
	mu      sync.Mutex
	pollers *cache.Cache
}

// NewRegistry creates a registry whose pollers run under ctx.
func NewRegistry(ctx context.Context, source Source, interval, idleTTL time.Duration, historyCap int) *Registry {
	pollers := cache.New(idleTTL, idleTTL)
	pollers.OnEvicted(func(_ string, value interface{}) {
		value.(*Poller).Stop()
	})
	return &Registry{
		source:     source,
		interval:   interval,
		idleTTL:    idleTTL,
		historyCap: historyCap,
		ctx:        ctx,
		pollers:    pollers,
	}
}

// View returns the live view for the scope, starting a poller for it when none
// is active, and marks the scope as recently consumed.
func (r *Registry) View(scope upstream.Scope) *LiveView {
	key := scope.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, found := r.pollers.Get(key); found {
		poller := existing.(*Poller)
		// Re-set to push the idle deadline out.
		r.pollers.Set(key, poller, cache.DefaultExpiration)
		return poller.View()
	}

	// Get does not report an expired entry the janitor has not swept yet, but
	// the entry still occupies the slot and its poller is still running. Set
	// would overwrite it without firing the eviction handler; Delete fires it
	// even for expired entries, stopping the old poller before the new one
	// takes the slot.
	r.pollers.Delete(key)

	poller := NewPoller(r.source, scope, r.interval, NewLiveView(r.historyCap), nil)
	r.pollers.Set(key, poller, cache.DefaultExpiration)
	go poller.Run(r.ctx)
	return poller.View()
}

// Active reports how many scope pollers are currently running.
func (r *Registry) Active() int {
	return r.pollers.ItemCount()
}

// Close stops every poller, including ones whose entries have expired but not
// been swept yet. Items excludes expired entries, so those are evicted first.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pollers.DeleteExpired()
	for key := range r.pollers.Items() {
		r.pollers.Delete(key) // triggers the eviction handler
	}
}

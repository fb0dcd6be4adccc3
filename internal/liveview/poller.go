package liveview

import (
	"context"
	"log"
	"sync"
	"time"

	"guiche-backend/internal/upstream"
)

// Source fetches the live items for a scope from the remote scheduling API.
type Source interface {
	LiveItems(ctx context.Context, scope upstream.Scope) ([]upstream.QueueItem, error)
}

// TransitionFunc observes items entering and leaving the live view after a
// successful poll.
type TransitionFunc func(appeared, dropped []upstream.QueueItem)

// Poller keeps a LiveView fresh by polling its source on a fixed interval.
//
// Timer ticks fire independent of in-flight request completion, so completions
// can arrive out of order. Every poll carries a monotonically increasing
// sequence number and only the latest-issued one may apply its result; stale
// completions are discarded.
type Poller struct {
	source   Source
	scope    upstream.Scope
	interval time.Duration
	view     *LiveView
	onChange TransitionFunc

	mu     sync.Mutex
	issued uint64

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewPoller creates a poller for the given scope. onChange may be nil.
func NewPoller(source Source, scope upstream.Scope, interval time.Duration, view *LiveView, onChange TransitionFunc) *Poller {
	return &Poller{
		source:   source,
		scope:    scope,
		interval: interval,
		view:     view,
		onChange: onChange,
		done:     make(chan struct{}),
	}
}

// View returns the poller's live view.
func (p *Poller) View() *LiveView {
	return p.view
}

// Run polls once immediately, then on the fixed interval until the context is
// cancelled or Stop is called.
func (p *Poller) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	defer close(p.done)
	defer cancel()

	p.PollOnce(ctx)

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			p.PollOnce(ctx)
			timer.Reset(p.interval)
		}
	}
}

// Stop tears the polling loop down and waits for it to exit. Safe to call more
// than once, and before Run has started.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		cancel := p.cancel
		p.mu.Unlock()
		if cancel == nil {
			// Run never started; nothing is draining done.
			close(p.done)
			return
		}
		cancel()
		<-p.done
	})
}

// PollOnce performs a single poll cycle. It never returns an error: a failed
// or undecodable fetch clears the current items, leaves the history untouched
// and logs the cause.
func (p *Poller) PollOnce(ctx context.Context) {
	p.mu.Lock()
	p.issued++
	seq := p.issued
	p.mu.Unlock()

	items, err := p.source.LiveItems(ctx, p.scope)

	// The staleness check and the apply form one critical section. Issuing
	// also takes the lock, so once a result passes the check no newer poll
	// can slip in and apply before it; a stale result can never overwrite a
	// newer snapshot.
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != p.issued {
		log.Printf("discarding stale poll result for scope %s (seq %d)", p.scope.Key(), seq)
		return
	}

	if err != nil {
		log.Printf("error fetching live items for scope %s: %v", p.scope.Key(), err)
		p.view.Clear()
		return
	}

	appeared, dropped := p.view.Apply(items)
	if p.onChange != nil && (len(appeared) > 0 || len(dropped) > 0) {
		p.onChange(appeared, dropped)
	}
}

package liveview

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"guiche-backend/internal/upstream"
)

func TestRegistry_View_ReusesPollerPerScope(t *testing.T) {
	source := &mockSource{
		LiveItemsFunc: func(ctx context.Context, scope upstream.Scope) ([]upstream.QueueItem, error) {
			return nil, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx, source, time.Hour, time.Hour, 4)
	defer r.Close()

	scopeA := upstream.Scope{Date: "2026-03-10", Staff: "12"}
	scopeB := upstream.Scope{Date: "2026-03-10", Staff: "34"}

	viewA := r.View(scopeA)
	assert.Same(t, viewA, r.View(scopeA))
	assert.NotSame(t, viewA, r.View(scopeB))
	assert.Equal(t, 2, r.Active())
}

func TestRegistry_Close_StopsAllPollers(t *testing.T) {
	started := make(chan upstream.Scope, 2)
	source := &mockSource{
		LiveItemsFunc: func(ctx context.Context, scope upstream.Scope) ([]upstream.QueueItem, error) {
			select {
			case started <- scope:
			default:
			}
			return nil, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx, source, time.Hour, time.Hour, 4)

	r.View(upstream.Scope{Date: "2026-03-10", Staff: "12"})
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the poller to start")
	}

	r.Close()
	assert.Equal(t, 0, r.Active())
}

func TestRegistry_ExpiredPollersAreStoppedNotOrphaned(t *testing.T) {
	var polls atomic.Int64
	source := &mockSource{
		LiveItemsFunc: func(ctx context.Context, scope upstream.Scope) ([]upstream.QueueItem, error) {
			polls.Add(1)
			return nil, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx, source, 5*time.Millisecond, 40*time.Millisecond, 4)

	scope := upstream.Scope{Date: "2026-03-10", Staff: "12"}
	r.View(scope)

	// Let the entry expire, then ask for the scope again. The expired entry
	// may not have been swept yet; its poller must be stopped, not left
	// polling behind the replacement.
	time.Sleep(60 * time.Millisecond)
	r.View(scope)

	r.Close()
	assert.Equal(t, 0, r.Active())

	// Close waits for every poller to exit, so the count must not move.
	settled := polls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, polls.Load(), "a poller kept running after Close")
}

package liveview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"guiche-backend/internal/upstream"
)

// mockSource is a mock implementation of the Source interface.
type mockSource struct {
	LiveItemsFunc func(ctx context.Context, scope upstream.Scope) ([]upstream.QueueItem, error)
}

func (m *mockSource) LiveItems(ctx context.Context, scope upstream.Scope) ([]upstream.QueueItem, error) {
	return m.LiveItemsFunc(ctx, scope)
}

func TestPoller_PollOnce_AppliesFetchedItems(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	source := &mockSource{
		LiveItemsFunc: func(ctx context.Context, scope upstream.Scope) ([]upstream.QueueItem, error) {
			return []upstream.QueueItem{item("FON001", base)}, nil
		},
	}

	var gotAppeared []upstream.QueueItem
	view := NewLiveView(4)
	p := NewPoller(source, upstream.Scope{}, time.Minute, view, func(appeared, dropped []upstream.QueueItem) {
		gotAppeared = appeared
	})

	p.PollOnce(context.Background())

	current, _ := view.Snapshot()
	assert.Equal(t, []string{"FON001"}, codes(current))
	assert.Equal(t, []string{"FON001"}, codes(gotAppeared))
}

func TestPoller_PollOnce_FailureClearsCurrentKeepsHistory(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	var mu sync.Mutex
	fail := false
	source := &mockSource{
		LiveItemsFunc: func(ctx context.Context, scope upstream.Scope) ([]upstream.QueueItem, error) {
			mu.Lock()
			defer mu.Unlock()
			if fail {
				return nil, errors.New("connection refused")
			}
			return []upstream.QueueItem{item("PSI002", base)}, nil
		},
	}

	onChangeCalls := 0
	view := NewLiveView(4)
	p := NewPoller(source, upstream.Scope{}, time.Minute, view, func(appeared, dropped []upstream.QueueItem) {
		onChangeCalls++
	})

	p.PollOnce(context.Background())
	view.Apply(nil) // PSI002 leaves, seeding the history
	p.PollOnce(context.Background())

	mu.Lock()
	fail = true
	mu.Unlock()
	p.PollOnce(context.Background())

	current, history := view.Snapshot()
	assert.Empty(t, current)
	assert.Equal(t, []string{"PSI002"}, codes(history))
	// The failed poll reports no transitions.
	assert.Equal(t, 2, onChangeCalls)
}

func TestPoller_PollOnce_StaleResultIsDiscarded(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	first := true
	source := &mockSource{
		LiveItemsFunc: func(ctx context.Context, scope upstream.Scope) ([]upstream.QueueItem, error) {
			mu.Lock()
			wasFirst := first
			first = false
			mu.Unlock()
			if wasFirst {
				close(entered)
				<-release
				return []upstream.QueueItem{item("OLD001", base)}, nil
			}
			return []upstream.QueueItem{item("NEW002", base.Add(time.Minute))}, nil
		},
	}

	view := NewLiveView(4)
	p := NewPoller(source, upstream.Scope{}, time.Minute, view, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.PollOnce(context.Background())
	}()
	<-entered

	// A newer poll completes while the first is still in flight.
	p.PollOnce(context.Background())
	close(release)
	<-done

	current, history := view.Snapshot()
	assert.Equal(t, []string{"NEW002"}, codes(current))
	assert.Empty(t, history)
}

func TestPoller_ResultCannotLandAfterANewerOne(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// Once a result has passed the staleness check it must finish applying
	// before any newer poll may even be issued. Poll A is held mid-apply (its
	// transition callback blocks); poll B, started meanwhile, must wait and
	// land strictly after A.
	var mu sync.Mutex
	first := true
	source := &mockSource{
		LiveItemsFunc: func(ctx context.Context, scope upstream.Scope) ([]upstream.QueueItem, error) {
			mu.Lock()
			wasFirst := first
			first = false
			mu.Unlock()
			if wasFirst {
				return []upstream.QueueItem{item("OLD001", base)}, nil
			}
			return []upstream.QueueItem{item("NEW002", base.Add(time.Minute))}, nil
		},
	}

	applying := make(chan struct{})
	release := make(chan struct{})
	var applied []string
	view := NewLiveView(4)
	p := NewPoller(source, upstream.Scope{}, time.Minute, view, func(appeared, dropped []upstream.QueueItem) {
		if len(applied) == 0 {
			close(applying)
			<-release
		}
		applied = append(applied, appeared[0].Code)
	})

	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		p.PollOnce(context.Background())
	}()
	<-applying

	doneB := make(chan struct{})
	go func() {
		defer close(doneB)
		p.PollOnce(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	<-doneA
	<-doneB

	assert.Equal(t, []string{"OLD001", "NEW002"}, applied)
	current, _ := view.Snapshot()
	assert.Equal(t, []string{"NEW002"}, codes(current))
}

func TestPoller_Run_PollsImmediatelyAndStops(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	polled := make(chan struct{}, 1)
	source := &mockSource{
		LiveItemsFunc: func(ctx context.Context, scope upstream.Scope) ([]upstream.QueueItem, error) {
			select {
			case polled <- struct{}{}:
			default:
			}
			return []upstream.QueueItem{item("FON001", base)}, nil
		},
	}

	view := NewLiveView(4)
	p := NewPoller(source, upstream.Scope{}, time.Hour, view, nil)
	go p.Run(context.Background())

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the first poll")
	}
	p.Stop()

	current, _ := view.Snapshot()
	assert.Equal(t, []string{"FON001"}, codes(current))
}

func TestPoller_Stop_BeforeRunIsSafe(t *testing.T) {
	p := NewPoller(&mockSource{}, upstream.Scope{}, time.Minute, NewLiveView(4), nil)
	p.Stop()
	p.Stop()
}

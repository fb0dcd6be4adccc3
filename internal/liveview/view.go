package liveview

import (
	"sort"
	"sync"

	"guiche-backend/internal/upstream"
)

// LiveView is the reconciled snapshot of items currently live within one
// scope, plus a bounded trailing history of items that recently left it.
type LiveView struct {
	mu         sync.RWMutex
	historyCap int
	current    []upstream.QueueItem
	history    []upstream.QueueItem
}

// NewLiveView creates an empty view whose history never exceeds historyCap.
func NewLiveView(historyCap int) *LiveView {
	return &LiveView{historyCap: historyCap}
}

// Apply reconciles a successfully fetched item list into the view. The list is
// sorted by scheduled moment descending (stable, so equal timestamps keep the
// source order); items present in the previous snapshot but absent from the
// new one move to the head of the history, which is then truncated at the cap.
// An empty list is a valid result: everything previously live is dropped.
// Apply returns the items that newly appeared and the items that dropped out,
// both relative to the previous snapshot.
func (v *LiveView) Apply(items []upstream.QueueItem) (appeared, dropped []upstream.QueueItem) {
	sorted := make([]upstream.QueueItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScheduledMoment.After(sorted[j].ScheduledMoment)
	})

	v.mu.Lock()
	defer v.mu.Unlock()

	newCodes := make(map[string]struct{}, len(sorted))
	for _, item := range sorted {
		newCodes[item.Code] = struct{}{}
	}
	for _, prev := range v.current {
		if _, stillLive := newCodes[prev.Code]; !stillLive {
			dropped = append(dropped, prev)
		}
	}

	prevCodes := make(map[string]struct{}, len(v.current))
	for _, prev := range v.current {
		prevCodes[prev.Code] = struct{}{}
	}
	for _, item := range sorted {
		if _, known := prevCodes[item.Code]; !known {
			appeared = append(appeared, item)
		}
	}

	if len(dropped) > 0 {
		v.history = append(append([]upstream.QueueItem{}, dropped...), v.history...)
		if len(v.history) > v.historyCap {
			v.history = v.history[:v.historyCap]
		}
	}
	v.current = sorted

	return appeared, dropped
}

// Clear empties the current items after a failed fetch. The history is left
// untouched: a transport error means "nothing is happening", not "everything
// just finished".
func (v *LiveView) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = nil
}

// Snapshot returns copies of the current items and the history.
func (v *LiveView) Snapshot() (current, history []upstream.QueueItem) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	current = append([]upstream.QueueItem{}, v.current...)
	history = append([]upstream.QueueItem{}, v.history...)
	return current, history
}

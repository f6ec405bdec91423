package bibmerge

import (
	"sync"

	"github.com/agentstation/bibmerge/pkg/collisions"
	"github.com/agentstation/bibmerge/pkg/reconcile"
)

// Hook function types for pipeline events
type (
	// CollisionHook is called when a dataset contains non-unique keys
	CollisionHook func(report *collisions.Report)

	// MergedHook is called after every successful merge
	MergedHook func(result *reconcile.Result)
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*hooks)(nil)

// Hooks registers event callbacks.
type Hooks interface {
	OnCollision(fn CollisionHook)
	OnMerged(fn MergedHook)
}

// hooks manages event callbacks for merge runs
type hooks struct {
	mu          sync.RWMutex
	onCollision []CollisionHook
	onMerged    []MergedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnCollision registers a callback for datasets with key collisions
func (h *hooks) OnCollision(fn CollisionHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCollision = append(h.onCollision, fn)
}

// OnMerged registers a callback for completed merges
func (h *hooks) OnMerged(fn MergedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMerged = append(h.onMerged, fn)
}

func (h *hooks) triggerCollision(report *collisions.Report) {
	if report.Empty() {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onCollision {
		hook(report)
	}
}

func (h *hooks) triggerMerged(result *reconcile.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onMerged {
		hook(result)
	}
}

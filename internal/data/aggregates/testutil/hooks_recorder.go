package testutil

import (
	"sync"

	"github.com/yungbote/brainforge-backend/internal/data/aggregates"
)

// HooksRecorder keeps every aggregate write event it sees.
type HooksRecorder struct {
	mu     sync.Mutex
	events []aggregates.WriteEvent
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) AfterWrite(ev aggregates.WriteEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *HooksRecorder) Events() []aggregates.WriteEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]aggregates.WriteEvent(nil), h.events...)
}

// Statuses returns the observed statuses in call order.
func (h *HooksRecorder) Statuses() []string {
	events := h.Events()
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Status)
	}
	return out
}

package aggregates

import (
	"time"

	domainagg "github.com/yungbote/brainforge-backend/internal/domain/aggregates"
	"github.com/yungbote/brainforge-backend/internal/observability"
)

// WriteEvent describes one finished aggregate write. Status is "success" or
// the aggregate error code of the failure.
type WriteEvent struct {
	Op       string
	Status   string
	Duration time.Duration
}

// Hooks observes aggregate writes after their transaction ends.
type Hooks interface {
	AfterWrite(ev WriteEvent)
}

// HooksFunc adapts a plain function to Hooks.
type HooksFunc func(WriteEvent)

func (f HooksFunc) AfterWrite(ev WriteEvent) { f(ev) }

var noopHooks = HooksFunc(func(WriteEvent) {})

// NewObservabilityHooks feeds write latency and lost races into metrics.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks
	}
	return HooksFunc(func(ev WriteEvent) {
		metrics.ObserveAggregateOperation(ev.Op, ev.Status, ev.Duration)
		if ev.Status == string(domainagg.CodeConflict) {
			metrics.IncAggregateConflict(ev.Op)
		}
	})
}

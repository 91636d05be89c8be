package aggregates

import (
	"context"
	"strings"
	"time"

	domainagg "github.com/yungbote/brainforge-backend/internal/domain/aggregates"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"gorm.io/gorm"
)

// BaseDeps is shared by every aggregate. Only DB is required.
type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	return d
}

// executeWrite runs fn in one transaction and reports the outcome to hooks.
// The returned error, if any, is always a *domainagg.Error.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	if op = strings.TrimSpace(op); op == "" {
		op = "aggregate.write"
	}

	start := time.Now()
	err := MapError(op, deps.Runner.InTx(ctx, fn))
	status := writeStatus(err)
	if status == string(domainagg.CodeInternal) && deps.Log != nil {
		deps.Log.Error("Aggregate write failed", "op", op, "error", err)
	}
	deps.Hooks.AfterWrite(WriteEvent{Op: op, Status: status, Duration: time.Since(start)})
	return err
}

func writeStatus(err error) string {
	if err == nil {
		return "success"
	}
	if code := domainagg.CodeOf(err); code != "" {
		return string(code)
	}
	return "failure"
}

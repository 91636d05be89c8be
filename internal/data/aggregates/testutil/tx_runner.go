package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/brainforge-backend/internal/data/aggregates"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
)

// InjectedTxRunner runs the body with no transaction and fails on demand.
// Set the Fail fields before the first call.
type InjectedTxRunner struct {
	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	mu            sync.Mutex
	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.bump(&r.BeginCalls)
	if r.FailBegin != nil {
		return r.FailBegin
	}

	err := r.FailBeforeBody
	if err == nil && fn != nil {
		err = fn(dbctx.Context{Ctx: ctx})
	}
	if err == nil {
		err = r.FailCommit
	}
	if err != nil {
		r.bump(&r.RollbackCalls)
		return err
	}
	r.bump(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) bump(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}

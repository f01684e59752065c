package service

import (
	"context"
	"sync"
	"time"

	dErrors "casework/pkg/domain-errors"
)

const defaultTxTimeout = 5 * time.Second

// StoreTx provides a transactional boundary for review mutations.
// The Postgres runner carries a *sql.Tx in the callback context; the in-memory
// runner serialises callbacks with a coarse lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type inMemoryStoreTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

func newInMemoryStoreTx() *inMemoryStoreTx {
	return &inMemoryStoreTx{timeout: defaultTxTimeout}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

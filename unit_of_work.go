package stepauth

import (
	"context"
	"log"
)

// unitOfWork is the explicit commit/rollback scope around registration's
// multi-write sequence. Each durable write registers a compensating action;
// Rollback runs them in reverse unless Commit was reached, so a failed step
// leaves no orphaned account behind.
type unitOfWork struct {
	compensations []func(context.Context) error
	committed     bool
}

func newUnitOfWork() *unitOfWork {
	return &unitOfWork{}
}

// OnRollback registers a compensating action for a write that just
// succeeded.
func (u *unitOfWork) OnRollback(fn func(context.Context) error) {
	u.compensations = append(u.compensations, fn)
}

// Commit marks the scope complete; Rollback becomes a no-op.
func (u *unitOfWork) Commit() {
	u.committed = true
}

// Rollback runs the registered compensations LIFO. Compensation failures
// are logged, not returned: the flow's own failure outcome already stands,
// and a half-applied rollback must still attempt the remaining actions.
func (u *unitOfWork) Rollback(ctx context.Context) {
	if u.committed {
		return
	}
	for i := len(u.compensations) - 1; i >= 0; i-- {
		if err := u.compensations[i](ctx); err != nil {
			log.Print("stepauth: unit of work compensation failed")
		}
	}
}

package stepauth

import (
	"context"
	"errors"
	"testing"
)

func TestUnitOfWorkRollbackRunsLIFO(t *testing.T) {
	var order []string
	uow := newUnitOfWork()
	uow.OnRollback(func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	uow.OnRollback(func(context.Context) error {
		order = append(order, "second")
		return nil
	})

	uow.Rollback(context.Background())

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("expected LIFO order, got %v", order)
	}
}

func TestUnitOfWorkCommitSkipsRollback(t *testing.T) {
	ran := false
	uow := newUnitOfWork()
	uow.OnRollback(func(context.Context) error {
		ran = true
		return nil
	})

	uow.Commit()
	uow.Rollback(context.Background())

	if ran {
		t.Fatal("compensation must not run after commit")
	}
}

func TestUnitOfWorkContinuesPastFailingCompensation(t *testing.T) {
	ran := false
	uow := newUnitOfWork()
	uow.OnRollback(func(context.Context) error {
		ran = true
		return nil
	})
	uow.OnRollback(func(context.Context) error {
		return errors.New("compensation failed")
	})

	uow.Rollback(context.Background())

	if !ran {
		t.Fatal("remaining compensations must run after a failure")
	}
}

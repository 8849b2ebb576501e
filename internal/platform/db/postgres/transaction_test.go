package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockManager(t *testing.T) (pgxmock.PgxPoolIface, *TransactionManager) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewTransactionManager(mock)
}

func TestTransactionManager_ReadOnlyCommit(t *testing.T) {
	t.Parallel()

	mock, tm := newMockManager(t)

	mock.ExpectBeginTx(ReadOnlyOptions)
	mock.ExpectCommit()

	err := tm.WithinReadOnly(context.Background(), func(ctx context.Context) error {
		if _, ok := txFromContext(ctx); !ok {
			t.Fatalf("transaction not injected into context")
		}
		if QueryerFromContext(ctx, nil) == nil {
			t.Fatalf("queryer should resolve to the transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinReadOnly returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransactionManager_ReadOnlyRollbackOnError(t *testing.T) {
	t.Parallel()

	mock, tm := newMockManager(t)

	mock.ExpectBeginTx(ReadOnlyOptions)
	mock.ExpectRollback()

	expectedErr := errors.New("load error")
	err := tm.WithinReadOnly(context.Background(), func(ctx context.Context) error {
		return expectedErr
	})
	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected %v, got %v", expectedErr, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransactionManager_NestedReadOnlyReusesSnapshot(t *testing.T) {
	t.Parallel()

	mock, tm := newMockManager(t)

	mock.ExpectBeginTx(ReadOnlyOptions)
	mock.ExpectCommit()

	calls := 0
	err := tm.WithinReadOnly(context.Background(), func(outer context.Context) error {
		outerTx, _ := txFromContext(outer)
		for i := 0; i < 2; i++ {
			if err := tm.WithinReadOnly(outer, func(inner context.Context) error {
				innerTx, ok := txFromContext(inner)
				if !ok || innerTx != outerTx {
					t.Fatalf("nested call did not reuse the outer transaction")
				}
				calls++
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("nested transaction returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 nested calls, got %d", calls)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransactionManager_CommitError(t *testing.T) {
	t.Parallel()

	mock, tm := newMockManager(t)

	commitErr := errors.New("connection reset")
	mock.ExpectBeginTx(ReadOnlyOptions)
	mock.ExpectCommit().WillReturnError(commitErr)
	mock.ExpectRollback()

	err := tm.WithinReadOnly(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}
}

func TestTransactionManager_NilManagerAndFunc(t *testing.T) {
	t.Parallel()

	var tm *TransactionManager
	ran := false
	if err := tm.WithinReadOnly(context.Background(), func(ctx context.Context) error {
		if _, ok := txFromContext(ctx); ok {
			t.Fatalf("nil manager must not inject a transaction")
		}
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("WithinReadOnly returned error: %v", err)
	}
	if !ran {
		t.Fatalf("fn was not executed")
	}

	if err := NewTransactionManager(nil).WithinReadOnly(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil fn")
	}
}

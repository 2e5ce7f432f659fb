package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isSerializationFailure(err error) bool {
	code := pqCode(err)
	return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == sqlStateUniqueViolation
}

// txRunner runs units of work in a transaction, retrying serialization failures.
type txRunner struct {
	provider   txProvider
	maxRetries int
	metrics    *MetricsService
}

// run executes fn with the given isolation. fn must be safe to call again.
func (r txRunner) run(ctx context.Context, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	if r.provider == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	opts := &sql.TxOptions{Isolation: isolation}
	for attempt := 0; ; attempt++ {
		err := r.once(ctx, opts, fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
		if attempt >= r.maxRetries {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "lecture was modified concurrently, please retry")
		}
		r.metrics.RecordTxRetry()
	}
}

func (r txRunner) once(ctx context.Context, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := r.provider.BeginTxx(ctx, opts)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit transaction")
	}
	return nil
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

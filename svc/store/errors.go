package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/pg"
)

var ErrUnsupportedUnit = errors.New("unit is not tracked by the postgres store")

// storeError converts a driver error into *entitlement.StoreError.
// pgx.ErrNoRows maps to entitlement.ErrRecordNotFound.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if pg.IsNotFoundError(err) {
		return entitlement.ErrRecordNotFound
	}

	se := &entitlement.StoreError{Message: op + ": " + err.Error(), Err: err}
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		se.Code = pgErr.Code
		se.Message = op + ": " + pgErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		se.Code = "timeout"
	case errors.Is(err, context.Canceled):
		se.Code = "canceled"
	}
	return se
}

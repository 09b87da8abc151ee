package database

import (
	"context"
	"database/sql"
	"fmt"
)

// TxFunc is executed inside a transaction by WithTx.
type TxFunc func(tx *sql.Tx) error

// WithTx begins a transaction, runs fn and commits on success. The
// transaction is rolled back when fn returns an error or panics; fn's error
// is returned unwrapped so callers can match sentinel errors.
func WithTx(ctx context.Context, db *sql.DB, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				err = fmt.Errorf("rollback failed (%v) after: %w", rbErr, err)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/infra"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction. ran reports whether fn was
// invoked at all, so callers can tell a BEGIN that never reached the
// datastore from a rollback.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (ran bool, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ran = true
		return fn(tx)
	})
	if err != nil && !ran && infra.IsUnavailable(err) {
		err = fmt.Errorf("%w: %w", apierror.ErrUnavailable, err)
	}
	return ran, err
}

// saleTxError wraps a failure of a sale mutation. Anything that went wrong
// once the transaction was open is a TransactionFailed carrying its cause.
func saleTxError(ran bool, err error) error {
	if err == nil || !ran {
		return err
	}
	return fmt.Errorf("%w: %w", apierror.ErrTransactionFailed, err)
}

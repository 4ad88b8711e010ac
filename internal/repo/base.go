// Package repo carries the shared plumbing for the domain repositories: a
// gorm handle that each repository clones onto a transaction via its WithTx
// method, so workflow operations can run header, line and ledger writes on
// one transaction.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base wraps the database handle a repository operates on. The handle is
// either the shared pool connection or the transaction a workflow operation
// passed in through WithTx.
type Base struct {
	db *gorm.DB
}

// NewBase binds a Base to the provided handle.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the handle bound to ctx so statement timeouts and cancellation
// propagate to the driver.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

package bookings

import (
	"context"

	"engracedsmile/internal/inventory"

	"gorm.io/gorm"
)

// UnitOfWork runs fn with a repository and ledger bound to one database
// transaction. fn returning an error rolls back both.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repo Repository, ledger inventory.Ledger) error) error
}

type gormUnitOfWork struct {
	db     *gorm.DB
	repo   Repository
	ledger inventory.Ledger
}

func NewUnitOfWork(db *gorm.DB, repo Repository, ledger inventory.Ledger) UnitOfWork {
	return &gormUnitOfWork{db: db, repo: repo, ledger: ledger}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(Repository, inventory.Ledger) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(u.repo.WithTx(tx), u.ledger.WithTx(tx))
	})
}

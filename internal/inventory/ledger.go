// Package inventory owns the available_seats counter on trips. Every sale
// and every restoration goes through a single conditional UPDATE so the
// counter can never leave [0, total_seats] under concurrent writers.
package inventory

import (
	"context"
	"fmt"
	"time"

	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/trips"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Ledger interface {
	// DecrementAvailableSeats takes one seat. It returns
	// apperrors.ErrInventoryExhausted when none are left.
	DecrementAvailableSeats(ctx context.Context, tripID uuid.UUID) error
	// RestoreAvailableSeats gives one seat back. It is a no-op when the
	// trip is already at total_seats.
	RestoreAvailableSeats(ctx context.Context, tripID uuid.UUID) error
	// WithTx binds the ledger to an open transaction.
	WithTx(tx *gorm.DB) Ledger
}

type ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) Ledger {
	return &ledger{db: db}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	return &ledger{db: tx}
}

func (l *ledger) DecrementAvailableSeats(ctx context.Context, tripID uuid.UUID) error {
	db := l.db.WithContext(ctx)
	result := db.Model(&trips.Trip{}).
		Where("id = ? AND available_seats > 0", tripID).
		Updates(map[string]interface{}{
			"available_seats": gorm.Expr("available_seats - 1"),
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("decrement seats for trip %s: %w", tripID, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := db.Model(&trips.Trip{}).Where("id = ?", tripID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("trip %s: %w", tripID, apperrors.ErrNotFound)
	}
	return fmt.Errorf("trip %s: %w", tripID, apperrors.ErrInventoryExhausted)
}

func (l *ledger) RestoreAvailableSeats(ctx context.Context, tripID uuid.UUID) error {
	result := l.db.WithContext(ctx).Model(&trips.Trip{}).
		Where("id = ? AND available_seats < total_seats", tripID).
		Updates(map[string]interface{}{
			"available_seats": gorm.Expr("available_seats + 1"),
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("restore seat for trip %s: %w", tripID, result.Error)
	}
	return nil
}

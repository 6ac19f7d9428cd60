package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"engracedsmile/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Create assigns a fresh reference and stores the booking as
	// pending/pending, regenerating the reference on collision.
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	FindByReference(ctx context.Context, reference string) (*Booking, error)
	FindByGatewayReference(ctx context.Context, reference string) (*Booking, error)

	// UpdateStatus writes the pair unconditionally, skipping the write when
	// the stored values already match.
	UpdateStatus(ctx context.Context, id uuid.UUID, to StatePair, gatewayReference *string) error
	// TransitionStatus applies t only if the stored pair equals t.From.
	TransitionStatus(ctx context.Context, id uuid.UUID, t Transition) (bool, error)

	ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Booking, int64, error)
	List(ctx context.Context, filter ListFilter) ([]Booking, int64, error)

	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db, now: time.Now}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx, now: r.now}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	booking.Status = StatusPending
	booking.PaymentStatus = PaymentPending
	booking.SeatReserved = false

	for attempt := 1; ; attempt++ {
		booking.BookingReference = NewReference(r.now())
		err := r.db.WithContext(ctx).Omit("Trip").Create(booking).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if attempt == referenceAttempts {
			return fmt.Errorf("booking reference collided %d times: %w", attempt, apperrors.ErrConflict)
		}
	}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.first(ctx, "bookings.id = ?", id)
}

func (r *repository) FindByReference(ctx context.Context, reference string) (*Booking, error) {
	return r.first(ctx, "booking_reference = ?", reference)
}

func (r *repository) FindByGatewayReference(ctx context.Context, reference string) (*Booking, error) {
	return r.first(ctx, "payment_reference = ?", reference)
}

func (r *repository) first(ctx context.Context, cond string, arg interface{}) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Trip").
		Preload("Trip.Route").
		Preload("Trip.Vehicle").
		Where(cond, arg).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %v: %w", arg, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, to StatePair, gatewayReference *string) error {
	db := r.db.WithContext(ctx)

	var current Booking
	err := db.Select("id", "status", "payment_status", "payment_reference").
		Where("id = ?", id).
		First(&current).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
		}
		return err
	}

	sameRef := gatewayReference == nil ||
		(current.PaymentReference != nil && *current.PaymentReference == *gatewayReference)
	if current.State() == to && sameRef {
		return nil
	}

	updates := map[string]interface{}{
		"status":         to.Status,
		"payment_status": to.PaymentStatus,
		"updated_at":     r.now().UTC(),
	}
	if gatewayReference != nil {
		updates["payment_reference"] = *gatewayReference
	}
	return translate(db.Model(&Booking{}).Where("id = ?", id).Updates(updates).Error)
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, t Transition) (bool, error) {
	updates := map[string]interface{}{
		"status":         t.To.Status,
		"payment_status": t.To.PaymentStatus,
		"updated_at":     r.now().UTC(),
	}
	if t.GatewayReference != nil {
		updates["payment_reference"] = *t.GatewayReference
	}
	if t.SeatReserved != nil {
		updates["seat_reserved"] = *t.SeatReserved
	}

	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ? AND payment_status = ?", id, t.From.Status, t.From.PaymentStatus).
		Updates(updates)
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Booking, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&Booking{}).Where("bookings.user_id = ?", userID), filter)
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Booking, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&Booking{}), filter)
}

func (r *repository) list(query *gorm.DB, filter ListFilter) ([]Booking, int64, error) {
	filter.normalize()

	if filter.Status != "" {
		query = query.Where("bookings.status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("bookings.payment_status = ?", filter.PaymentStatus)
	}
	if filter.TripID != nil {
		query = query.Where("bookings.trip_id = ?", *filter.TripID)
	}
	if filter.From != nil {
		query = query.Where("bookings.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("bookings.created_at < ?", *filter.To)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"bookings.booking_reference ILIKE ? OR bookings.payment_reference ILIKE ? OR bookings.passenger_name ILIKE ? OR bookings.passenger_email ILIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []Booking
	err := query.
		Preload("Trip").
		Preload("Trip.Route").
		Order("bookings.created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("payment reference already used: %w", apperrors.ErrConflict)
	}
	return err
}

package trips

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
	Create(ctx context.Context, trip *Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*Trip, error)
	List(ctx context.Context, filter ListFilter) ([]Trip, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	ResizeSeats(ctx context.Context, id uuid.UUID, totalSeats int) error
	Revise(ctx context.Context, id uuid.UUID, updates map[string]interface{}, totalSeats *int) error
	Search(ctx context.Context, q SearchQuery) ([]Trip, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, trip *Trip) error {
	return r.db.WithContext(ctx).Omit("Route", "Vehicle", "Driver").Create(trip).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Trip, error) {
	var trip Trip
	err := r.db.WithContext(ctx).
		Preload("Route").
		Preload("Vehicle").
		Preload("Driver").
		Where("id = ?", id).
		First(&trip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("trip %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &trip, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Trip, int64, error) {
	filter.normalize()
	query := r.db.WithContext(ctx).Model(&Trip{})

	if filter.RouteID != nil {
		query = query.Where("route_id = ?", *filter.RouteID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.From != nil {
		query = query.Where("departure_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("departure_time < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var trips []Trip
	err := query.Preload("Route").Preload("Vehicle").
		Order("departure_time DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&trips).Error
	if err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&Trip{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("trip %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// ResizeSeats changes total_seats and shifts available_seats by the same
// delta in one statement, so seats already sold stay sold. It refuses a
// size smaller than the number of seats already sold.
func (r *repository) ResizeSeats(ctx context.Context, id uuid.UUID, totalSeats int) error {
	db := r.db.WithContext(ctx)
	result := db.Exec(
		`UPDATE trips
		    SET available_seats = available_seats + (? - total_seats),
		        total_seats = ?,
		        updated_at = ?
		  WHERE id = ? AND available_seats + (? - total_seats) >= 0`,
		totalSeats, totalSeats, time.Now().UTC(), id, totalSeats,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := db.Model(&Trip{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("trip %s: %w", id, apperrors.ErrNotFound)
	}
	return apperrors.NewValidation("total_seats", "cannot be lower than the number of seats already sold")
}

// Revise applies a resize and a field update as one unit: a refused resize
// leaves every other column untouched
func (r *repository) Revise(ctx context.Context, id uuid.UUID, updates map[string]interface{}, totalSeats *int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &repository{db: tx}
		if totalSeats != nil {
			if err := txRepo.ResizeSeats(ctx, id, *totalSeats); err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return txRepo.Update(ctx, id, updates)
	})
}

func (r *repository) Search(ctx context.Context, q SearchQuery) ([]Trip, error) {
	dayStart := time.Date(q.Date.Year(), q.Date.Month(), q.Date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := r.db.WithContext(ctx).
		Model(&Trip{}).
		Joins("JOIN routes ON routes.id = trips.route_id").
		Where("LOWER(routes.from_city) = LOWER(?) AND LOWER(routes.to_city) = LOWER(?)", q.FromCity, q.ToCity).
		Where("routes.is_active = ?", true).
		Where("trips.is_active = ?", true).
		Where("trips.status IN ?", []TripStatus{TripStatusScheduled, TripStatusBoarding}).
		Where("trips.departure_time >= ? AND trips.departure_time < ?", dayStart, dayEnd).
		Where("trips.available_seats >= ?", q.Passengers)

	if q.Category != "" {
		query = query.Where("trips.category = ?", q.Category)
	}
	if q.PromoOnly {
		query = query.Where("trips.is_promo = ? AND trips.discount_percent > 0", true).
			Where("trips.promo_valid_until IS NULL OR trips.promo_valid_until > ?", time.Now().UTC())
	}

	var trips []Trip
	err := query.
		Preload("Route").
		Preload("Vehicle").
		Order("trips.departure_time ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

package fleet

import (
	"context"
	"errors"
	"fmt"

	"engracedsmile/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateRoute(ctx context.Context, route *Route) error
	GetRoute(ctx context.Context, id uuid.UUID) (*Route, error)
	ListRoutes(ctx context.Context, filter ListFilter) ([]Route, int64, error)
	UpdateRoute(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Route, error)
	DeleteRoute(ctx context.Context, id uuid.UUID) error

	CreateVehicle(ctx context.Context, vehicle *Vehicle) error
	GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	ListVehicles(ctx context.Context, filter ListFilter) ([]Vehicle, int64, error)
	UpdateVehicle(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Vehicle, error)
	DeleteVehicle(ctx context.Context, id uuid.UUID) error

	CreateDriver(ctx context.Context, driver *Driver) error
	GetDriver(ctx context.Context, id uuid.UUID) (*Driver, error)
	ListDrivers(ctx context.Context, filter ListFilter) ([]Driver, int64, error)
	UpdateDriver(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Driver, error)
	DeleteDriver(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Routes

func (r *repository) CreateRoute(ctx context.Context, route *Route) error {
	return r.db.WithContext(ctx).Create(route).Error
}

func (r *repository) GetRoute(ctx context.Context, id uuid.UUID) (*Route, error) {
	return first[Route](ctx, r.db, id, "route")
}

func (r *repository) ListRoutes(ctx context.Context, filter ListFilter) ([]Route, int64, error) {
	query := r.db.WithContext(ctx).Model(&Route{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("from_city ILIKE ? OR to_city ILIKE ?", like, like)
	}
	var routes []Route
	total, err := page(query, filter, "from_city ASC, to_city ASC", &routes)
	return routes, total, err
}

func (r *repository) UpdateRoute(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Route, error) {
	if err := update[Route](ctx, r.db, id, updates, "route"); err != nil {
		return nil, err
	}
	return r.GetRoute(ctx, id)
}

func (r *repository) DeleteRoute(ctx context.Context, id uuid.UUID) error {
	return deleteUnreferenced[Route](ctx, r.db, id, "route_id", "route")
}

// Vehicles

func (r *repository) CreateVehicle(ctx context.Context, vehicle *Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *repository) GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	var vehicle Vehicle
	err := r.db.WithContext(ctx).Preload("Driver").Where("id = ?", id).First(&vehicle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("vehicle %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) ListVehicles(ctx context.Context, filter ListFilter) ([]Vehicle, int64, error) {
	query := r.db.WithContext(ctx).Model(&Vehicle{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("plate_number ILIKE ? OR make ILIKE ? OR model ILIKE ?", like, like, like)
	}
	var vehicles []Vehicle
	total, err := page(query, filter, "created_at DESC", &vehicles, "Driver")
	return vehicles, total, err
}

func (r *repository) UpdateVehicle(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Vehicle, error) {
	if err := update[Vehicle](ctx, r.db, id, updates, "vehicle"); err != nil {
		return nil, err
	}
	return r.GetVehicle(ctx, id)
}

func (r *repository) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return deleteUnreferenced[Vehicle](ctx, r.db, id, "vehicle_id", "vehicle")
}

// Drivers

func (r *repository) CreateDriver(ctx context.Context, driver *Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *repository) GetDriver(ctx context.Context, id uuid.UUID) (*Driver, error) {
	return first[Driver](ctx, r.db, id, "driver")
}

func (r *repository) ListDrivers(ctx context.Context, filter ListFilter) ([]Driver, int64, error) {
	query := r.db.WithContext(ctx).Model(&Driver{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("full_name ILIKE ? OR license_number ILIKE ?", like, like)
	}
	var drivers []Driver
	total, err := page(query, filter, "full_name ASC", &drivers)
	return drivers, total, err
}

func (r *repository) UpdateDriver(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Driver, error) {
	if err := update[Driver](ctx, r.db, id, updates, "driver"); err != nil {
		return nil, err
	}
	return r.GetDriver(ctx, id)
}

func (r *repository) DeleteDriver(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnreferenced(tx, "driver_id", id, "driver"); err != nil {
			return err
		}
		// vehicles keep running without an assigned driver
		if err := tx.Model(&Vehicle{}).Where("driver_id = ?", id).Update("driver_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unassign driver: %w", err)
		}
		return deleteRow[Driver](tx, id, "driver")
	})
}

func first[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, kind string) (*T, error) {
	var out T
	err := db.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &out, nil
}

func update[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, updates map[string]interface{}, kind string) error {
	if len(updates) == 0 {
		_, err := first[T](ctx, db, id, kind)
		return err
	}
	var model T
	result := db.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrNotFound)
	}
	return nil
}

func page(query *gorm.DB, filter ListFilter, order string, dest interface{}, preloads ...string) (int64, error) {
	filter.normalize()
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	for _, p := range preloads {
		query = query.Preload(p)
	}
	if err := query.Order(order).Offset(filter.offset()).Limit(filter.Limit).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func deleteUnreferenced[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, column, kind string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnreferenced(tx, column, id, kind); err != nil {
			return err
		}
		return deleteRow[T](tx, id, kind)
	})
}

// ensureUnreferenced fails with ErrConflict while any trip still points at the row
func ensureUnreferenced(tx *gorm.DB, column string, id uuid.UUID, kind string) error {
	var count int64
	if err := tx.Table("trips").Where(column+" = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s usage: %w", kind, err)
	}
	if count > 0 {
		return fmt.Errorf("%s is used by %d trip(s), deactivate it instead: %w", kind, count, apperrors.ErrConflict)
	}
	return nil
}

func deleteRow[T any](tx *gorm.DB, id uuid.UUID, kind string) error {
	var model T
	result := tx.Where("id = ?", id).Delete(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrNotFound)
	}
	return nil
}

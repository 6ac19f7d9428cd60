package database

import (
	"fmt"

	"engracedsmile/internal/bookings"
	"engracedsmile/internal/fleet"
	"engracedsmile/internal/trips"
	"engracedsmile/internal/users"

	"gorm.io/gorm"
)

// Migrate creates or updates every table. uuid-ossp backs the
// uuid_generate_v4() column defaults.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp: %w", err)
	}
	return db.AutoMigrate(
		&users.User{},
		&fleet.Route{},
		&fleet.Driver{},
		&fleet.Vehicle{},
		&trips.Trip{},
		&bookings.Booking{},
	)
}

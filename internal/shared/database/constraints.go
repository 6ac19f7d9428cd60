package database

import (
	"gorm.io/gorm"
)

var constraintStatements = []string{
	// a confirmed or completed booking has always been paid
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_bookings_confirmed_paid') THEN
			ALTER TABLE bookings ADD CONSTRAINT chk_bookings_confirmed_paid
			CHECK (status NOT IN ('confirmed', 'completed') OR payment_status = 'paid');
		END IF;
	END $$`,

	// a pending booking never carries a settled payment
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_bookings_pending_unsettled') THEN
			ALTER TABLE bookings ADD CONSTRAINT chk_bookings_pending_unsettled
			CHECK (status <> 'pending' OR payment_status = 'pending');
		END IF;
	END $$`,

	`CREATE INDEX IF NOT EXISTS idx_bookings_trip_status ON bookings (trip_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_trips_route_departure ON trips (route_id, departure_time)`,
}

// MigrateConstraints adds the checks AutoMigrate cannot express. Each
// statement is idempotent.
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

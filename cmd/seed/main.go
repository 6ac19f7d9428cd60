package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"engracedsmile/internal/fleet"
	"engracedsmile/internal/shared/config"
	"engracedsmile/internal/shared/database"
	"engracedsmile/internal/trips"
	"engracedsmile/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting EngracedSmile database seeder...")
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\nSeeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\nSeeding completed.")
}

// CleanDatabase truncates tables children first
func (s *Seeder) CleanDatabase() error {
	tables := []string{"bookings", "trips", "vehicles", "drivers", "routes", "users"}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	if err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	routes, err := s.SeedRoutes()
	if err != nil {
		return fmt.Errorf("failed to seed routes: %w", err)
	}
	drivers, err := s.SeedDrivers()
	if err != nil {
		return fmt.Errorf("failed to seed drivers: %w", err)
	}
	vehicles, err := s.SeedVehicles(drivers)
	if err != nil {
		return fmt.Errorf("failed to seed vehicles: %w", err)
	}
	if err := s.SeedTrips(routes, vehicles); err != nil {
		return fmt.Errorf("failed to seed trips: %w", err)
	}

	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}
	return nil
}

// SeedUsers creates one admin and two customers, all with password "qwerty"
func (s *Seeder) SeedUsers() error {
	fmt.Println("  Seeding users...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		name  string
		email string
		phone string
		role  users.Role
	}{
		{"Admin User", "admin@engracedsmile.com", "+2348000000001", users.RoleAdmin},
		{"Chidi Okafor", "chidi@example.com", "+2348030000002", users.RoleUser},
		{"Amina Bello", "amina@example.com", "+2348050000003", users.RoleUser},
	}

	for _, u := range usersData {
		user := users.User{
			ID:       uuid.New(),
			FullName: u.name,
			Email:    u.email,
			Phone:    u.phone,
			Password: string(hashedPassword),
			Role:     u.role,
		}
		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.email, err)
		}
		fmt.Printf("    Created user: %s (%s)\n", user.Email, user.Role)
	}
	return nil
}

func (s *Seeder) SeedRoutes() ([]fleet.Route, error) {
	fmt.Println("  Seeding routes...")

	routes := []fleet.Route{
		{FromCity: "Lagos", ToCity: "Abuja", DistanceKm: 760, DurationHours: 10, BasePrice: 2500000},
		{FromCity: "Lagos", ToCity: "Ibadan", DistanceKm: 130, DurationHours: 2.5, BasePrice: 800000},
		{FromCity: "Abuja", ToCity: "Kaduna", DistanceKm: 200, DurationHours: 3, BasePrice: 900000},
		{FromCity: "Enugu", ToCity: "Port Harcourt", DistanceKm: 250, DurationHours: 4, BasePrice: 1200000},
	}
	for i := range routes {
		routes[i].ID = uuid.New()
		routes[i].IsActive = true
		if err := s.db.PostgreSQL.Create(&routes[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to create route %s-%s: %w", routes[i].FromCity, routes[i].ToCity, err)
		}
		fmt.Printf("    Created route: %s -> %s\n", routes[i].FromCity, routes[i].ToCity)
	}
	return routes, nil
}

func (s *Seeder) SeedDrivers() ([]fleet.Driver, error) {
	fmt.Println("  Seeding drivers...")

	expiry := time.Now().AddDate(2, 0, 0)
	drivers := []fleet.Driver{
		{FullName: "Emeka Nwosu", LicenseNumber: "LAG-DRV-001", PhoneNumber: "+2348060000010", Rating: 4.7},
		{FullName: "Tunde Adeyemi", LicenseNumber: "LAG-DRV-002", PhoneNumber: "+2348060000011", Rating: 4.5},
		{FullName: "Musa Ibrahim", LicenseNumber: "ABJ-DRV-003", PhoneNumber: "+2348060000012", Rating: 4.9},
	}
	for i := range drivers {
		drivers[i].ID = uuid.New()
		drivers[i].LicenseExpiry = expiry
		drivers[i].IsActive = true
		if err := s.db.PostgreSQL.Create(&drivers[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to create driver %s: %w", drivers[i].FullName, err)
		}
		fmt.Printf("    Created driver: %s\n", drivers[i].FullName)
	}
	return drivers, nil
}

func (s *Seeder) SeedVehicles(drivers []fleet.Driver) ([]fleet.Vehicle, error) {
	fmt.Println("  Seeding vehicles...")

	vehicles := []fleet.Vehicle{
		{PlateNumber: "LSR-482-XA", Make: "Toyota", Model: "Coaster", Year: 2022, Capacity: 30, VehicleType: fleet.VehicleBus,
			Features: pq.StringArray{"air conditioning", "usb charging"}},
		{PlateNumber: "ABJ-219-KT", Make: "Toyota", Model: "Hiace", Year: 2021, Capacity: 14, VehicleType: fleet.VehicleMinibus,
			Features: pq.StringArray{"air conditioning"}},
		{PlateNumber: "ENU-733-PH", Make: "Toyota", Model: "Sienna", Year: 2020, Capacity: 7, VehicleType: fleet.VehicleCar,
			Features: pq.StringArray{"reclining seats"}},
	}
	for i := range vehicles {
		vehicles[i].ID = uuid.New()
		vehicles[i].IsActive = true
		vehicles[i].Images = pq.StringArray{}
		driverID := drivers[i%len(drivers)].ID
		vehicles[i].DriverID = &driverID
		if err := s.db.PostgreSQL.Create(&vehicles[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to create vehicle %s: %w", vehicles[i].PlateNumber, err)
		}
		fmt.Printf("    Created vehicle: %s (%d seats)\n", vehicles[i].PlateNumber, vehicles[i].Capacity)
	}
	return vehicles, nil
}

// SeedTrips schedules a week of morning departures per route
func (s *Seeder) SeedTrips(routes []fleet.Route, vehicles []fleet.Vehicle) error {
	fmt.Println("  Seeding trips...")

	start := time.Now().UTC().Truncate(24 * time.Hour).Add(24*time.Hour + 7*time.Hour)
	count := 0
	for day := 0; day < 7; day++ {
		for i, route := range routes {
			vehicle := vehicles[i%len(vehicles)]
			departure := start.AddDate(0, 0, day)
			trip := trips.Trip{
				ID:             uuid.New(),
				RouteID:        route.ID,
				VehicleID:      vehicle.ID,
				DriverID:       vehicle.DriverID,
				DepartureTime:  departure,
				ArrivalTime:    departure.Add(time.Duration(route.DurationHours * float64(time.Hour))),
				Price:          route.BasePrice,
				TotalSeats:     vehicle.Capacity,
				AvailableSeats: vehicle.Capacity,
				Status:         trips.TripStatusScheduled,
				IsActive:       true,
				Category:       trips.CategoryRegular,
			}
			if day == 5 || day == 6 {
				trip.Category = trips.CategoryWeekend
			}
			if err := s.db.PostgreSQL.Create(&trip).Error; err != nil {
				return fmt.Errorf("failed to create trip for %s-%s: %w", route.FromCity, route.ToCity, err)
			}
			count++
		}
	}
	fmt.Printf("    Created %d trips\n", count)
	return nil
}

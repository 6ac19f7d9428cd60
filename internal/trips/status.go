package trips

// TripStatus is the operational state of a departure
type TripStatus string

const (
	TripStatusScheduled  TripStatus = "scheduled"
	TripStatusBoarding   TripStatus = "boarding"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
)

func (s TripStatus) IsValid() bool {
	switch s {
	case TripStatusScheduled, TripStatusBoarding, TripStatusInProgress, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

// Bookable reports whether new bookings may be taken in this state
func (s TripStatus) Bookable() bool {
	return s == TripStatusScheduled || s == TripStatusBoarding
}

// Category tags a departure for search filtering and display
type Category string

const (
	CategoryRegular   Category = "regular"
	CategoryPremium   Category = "premium"
	CategoryLuxury    Category = "luxury"
	CategoryExpress   Category = "express"
	CategoryOvernight Category = "overnight"
	CategoryWeekend   Category = "weekend"
	CategoryHoliday   Category = "holiday"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryRegular, CategoryPremium, CategoryLuxury, CategoryExpress, CategoryOvernight, CategoryWeekend, CategoryHoliday:
		return true
	}
	return false
}

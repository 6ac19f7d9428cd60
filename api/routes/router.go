// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"engracedsmile/internal/analytics"
	"engracedsmile/internal/auth"
	"engracedsmile/internal/bookings"
	"engracedsmile/internal/fleet"
	"engracedsmile/internal/inventory"
	"engracedsmile/internal/notifications"
	"engracedsmile/internal/payments"
	"engracedsmile/internal/shared/config"
	"engracedsmile/internal/shared/database"
	"engracedsmile/internal/shared/middleware"
	"engracedsmile/internal/trips"
	"engracedsmile/pkg/cache"
	"engracedsmile/pkg/paystack"

	"github.com/gin-gonic/gin"
)

const serviceName = "engracedsmile-backend"

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher
	cache     cache.Service

	fleetService trips.FleetLookup
	tripRepo     trips.Repository
	tripCache    *trips.SearchCache
	bookingRepo  bookings.Repository
	bookingUoW   bookings.UnitOfWork
}

func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher) *Router {
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	r := &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
	}
	if db.Redis != nil {
		r.cache = cache.NewService(db.Redis)
	}
	return r
}

// SetupRoutes configures all application routes. Order matters: trips
// needs fleet, bookings needs trips, payments needs bookings.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireAdmin())
	{
		r.setupAuthRoutes(api)
		r.setupFleetRoutes(admin)
		r.setupTripRoutes(api, admin)
		r.setupBookingRoutes(api, admin)
		r.setupPaymentRoutes(api)
		r.setupAnalyticsRoutes(admin)
	}
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   serviceName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	auth.SetupAuthRoutes(rg, authController, r.config)
}

func (r *Router) setupFleetRoutes(admin *gin.RouterGroup) {
	fleetService := fleet.NewService(fleet.NewRepository(r.db.GetPostgreSQL()))
	r.fleetService = fleetService
	fleet.SetupFleetRoutes(admin, fleet.NewController(fleetService))
}

func (r *Router) setupTripRoutes(api, admin *gin.RouterGroup) {
	r.tripRepo = trips.NewRepository(r.db.GetPostgreSQL())
	r.tripCache = trips.NewSearchCache(r.cache)
	tripService := trips.NewService(r.tripRepo, r.fleetService, r.cache, r.config.Redis.CacheTTL)
	trips.SetupTripRoutes(api, admin, trips.NewController(tripService))
}

func (r *Router) setupBookingRoutes(api, admin *gin.RouterGroup) {
	pg := r.db.GetPostgreSQL()
	r.bookingRepo = bookings.NewRepository(pg)
	r.bookingUoW = bookings.NewUnitOfWork(pg, r.bookingRepo, inventory.NewLedger(pg))

	bookingService := bookings.NewService(r.bookingRepo, r.tripRepo, r.bookingUoW, r.tripCache, r.publisher)
	bookings.SetupBookingRoutes(api, admin, bookings.NewController(bookingService), r.config)
}

func (r *Router) setupPaymentRoutes(api *gin.RouterGroup) {
	gateway := paystack.NewClient(r.config.Paystack)
	replay := payments.NewReplayGuard(r.cache, r.config.Redis.WebhookReplayTTL)

	paymentService := payments.NewService(
		r.bookingRepo,
		r.bookingUoW,
		gateway,
		replay,
		r.tripCache,
		r.publisher,
		r.config.Paystack.CallbackURL,
	)
	payments.SetupPaymentRoutes(api, payments.NewController(paymentService))
}

func (r *Router) setupAnalyticsRoutes(admin *gin.RouterGroup) {
	analyticsService := analytics.NewService(
		analytics.NewRepository(r.db.GetPostgreSQL()),
		r.bookingRepo,
		r.cache,
		r.config.Paystack.Currency,
	)
	analytics.SetupAnalyticsRoutes(admin, analytics.NewController(analyticsService))
}

package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pinecove/rental-booking-backend/internal/alert"
	alertHttp "github.com/pinecove/rental-booking-backend/internal/alert/http"
	"github.com/pinecove/rental-booking-backend/internal/availability"
	availabilityHttp "github.com/pinecove/rental-booking-backend/internal/availability/http"
	"github.com/pinecove/rental-booking-backend/internal/booking"
	bookingHttp "github.com/pinecove/rental-booking-backend/internal/booking/http"
	"github.com/pinecove/rental-booking-backend/internal/calendar"
	calendarHttp "github.com/pinecove/rental-booking-backend/internal/calendar/http"
	"github.com/pinecove/rental-booking-backend/internal/feedsync"
	feedsyncHttp "github.com/pinecove/rental-booking-backend/internal/feedsync/http"
	"github.com/pinecove/rental-booking-backend/internal/hold"
	holdHttp "github.com/pinecove/rental-booking-backend/internal/hold/http"
	"github.com/pinecove/rental-booking-backend/internal/pricing"
	pricingHttp "github.com/pinecove/rental-booking-backend/internal/pricing/http"
)

// Config carries the services the router exposes.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	Resolver        *availability.Resolver
	CalendarService calendar.Service
	PricingService  pricing.Service
	HoldService     hold.Service
	BookingService  booking.Service
	AlertService    alert.Service
	SyncService     feedsync.Service
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger) and
// registering the guest-facing and operator routes.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = []string{cfg.ProdOrigins}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	availabilityHandler := availabilityHttp.NewHandler(cfg.Resolver)
	calendarHandler := calendarHttp.NewHandler(cfg.CalendarService)
	pricingHandler := pricingHttp.NewHandler(cfg.PricingService)
	holdHandler := holdHttp.NewHandler(cfg.HoldService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	alertHandler := alertHttp.NewHandler(cfg.AlertService)
	syncHandler := feedsyncHttp.NewHandler(cfg.SyncService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		availabilityHttp.RegisterRoutes(v1, availabilityHandler)
		calendarHttp.RegisterRoutes(v1, calendarHandler)
		pricingHttp.RegisterRoutes(v1, pricingHandler)
		holdHttp.RegisterRoutes(v1, holdHandler)
		bookingHttp.RegisterRoutes(v1, bookingHandler)
		alertHttp.RegisterRoutes(v1, alertHandler)
		feedsyncHttp.RegisterRoutes(v1, syncHandler)
	}

	return r
}

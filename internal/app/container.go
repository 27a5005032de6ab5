package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pinecove/rental-booking-backend/internal/alert"
	"github.com/pinecove/rental-booking-backend/internal/api"
	"github.com/pinecove/rental-booking-backend/internal/availability"
	"github.com/pinecove/rental-booking-backend/internal/booking"
	"github.com/pinecove/rental-booking-backend/internal/calendar"
	"github.com/pinecove/rental-booking-backend/internal/feedsync"
	"github.com/pinecove/rental-booking-backend/internal/hold"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	"github.com/pinecove/rental-booking-backend/internal/pricing"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	DBPool         *pgxpool.Pool
	HoldTTL        time.Duration
	ReaperInterval time.Duration
	SyncInterval   time.Duration
	FeedTimeout    time.Duration
	FeedSources    []feedsync.Source
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	Reaper     *hold.Reaper
	SyncRunner *feedsync.Runner
	Syncer     feedsync.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Alert Module
	alertRepo := alert.NewPgxRepository(cfg.DBPool)
	alertService := alert.NewService(alertRepo)

	// Calendar Store
	calRepo := calendar.NewPgxRepository(cfg.DBPool)
	calService := calendar.NewService(calRepo, alertService)

	// Pricing Rule Engine
	pricingRepo := pricing.NewPgxRepository(cfg.DBPool)
	pricingEngine := pricing.NewEngine(pricingRepo)

	// Hold Manager: the repository is shared with the resolver so live
	// holds block availability, and the resolver is the serialized
	// admission gate.
	holdRepo := hold.NewPgxRepository(cfg.DBPool)

	resolver := availability.NewResolver(
		calService,
		holdSource{repo: holdRepo},
		pricingEngine,
		alertService,
	)

	holdService := hold.NewService(holdRepo, resolver, pricingEngine, cfg.HoldTTL)
	reaper := hold.NewReaper(holdRepo, cfg.ReaperInterval)

	// Booking Finalizer
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, holdService, pricingEngine)

	// External Calendar Synchronizer
	fetcher := feedsync.NewHTTPFetcher(cfg.FeedTimeout)
	syncService := feedsync.NewService(cfg.FeedSources, fetcher, calRepo, alertService)
	syncRunner := feedsync.NewRunner(syncService, cfg.SyncInterval)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		Resolver:        resolver,
		CalendarService: calService,
		PricingService:  pricingEngine,
		HoldService:     holdService,
		BookingService:  bookingService,
		AlertService:    alertService,
		SyncService:     syncService,
	})

	return &Container{
		Router:     router,
		Reaper:     reaper,
		SyncRunner: syncRunner,
		Syncer:     syncService,
	}
}

// holdSource adapts the hold repository to the resolver's read-only
// view of live holds.
type holdSource struct {
	repo hold.Repository
}

func (s holdSource) ActiveOverlapping(ctx context.Context, r daterange.Range, excludeID string) ([]*hold.Hold, error) {
	return s.repo.ActiveOverlapping(ctx, r, excludeID, time.Now())
}

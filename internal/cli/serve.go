package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pinecove/rental-booking-backend/internal/app"
	"github.com/pinecove/rental-booking-backend/internal/config"
	"github.com/pinecove/rental-booking-backend/internal/db"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, hold reaper and calendar sync loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			// For receiving Ctrl+C / SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			pool, err := db.NewPool(ctx, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			container := app.NewContainer(app.Config{
				IsProduction:   cfg.IsProduction,
				ProdOrigins:    cfg.ProdOrigins,
				DBPool:         pool,
				HoldTTL:        cfg.HoldTTL,
				ReaperInterval: cfg.ReaperInterval,
				SyncInterval:   cfg.SyncInterval,
				FeedTimeout:    cfg.FeedTimeout,
				FeedSources:    cfg.FeedSources,
			})

			// Background loops: abandoned-checkout reaping and external
			// calendar reconciliation.
			go container.Reaper.Run(ctx)
			if len(cfg.FeedSources) > 0 {
				go container.SyncRunner.Run(ctx)
			}

			server := &http.Server{
				Addr:    cfg.HTTPAddr,
				Handler: container.Router,
			}

			go func() {
				log.Printf("server running on %s", cfg.HTTPAddr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("server error: %v", err)
				}
			}()

			<-ctx.Done()
			log.Println("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("server forced to shutdown: %v", err)
			}

			log.Println("server exited gracefully")
			return nil
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pinecove/rental-booking-backend/internal/app"
	"github.com/pinecove/rental-booking-backend/internal/config"
	"github.com/pinecove/rental-booking-backend/internal/db"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile external calendar feeds once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(cfg.FeedSources) == 0 {
				return fmt.Errorf("no feed sources configured, set FEED_SOURCES")
			}

			pool, err := db.NewPool(ctx, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			container := app.NewContainer(app.Config{
				DBPool:      pool,
				HoldTTL:     cfg.HoldTTL,
				FeedTimeout: cfg.FeedTimeout,
				FeedSources: cfg.FeedSources,
			})

			failed := false
			for _, res := range container.Syncer.SyncAll(ctx) {
				if res.Err != nil {
					failed = true
					log.Printf("source %s: %v", res.Source, res.Err)
					continue
				}
				log.Printf("source %s: %d added, %d removed, %d conflict(s)", res.Source, res.Added, res.Removed, res.Conflicts)
			}
			if failed {
				return fmt.Errorf("one or more feeds failed to reconcile")
			}
			return nil
		},
	}
}

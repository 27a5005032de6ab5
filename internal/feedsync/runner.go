package feedsync

import (
	"context"
	"time"
)

// Runner triggers periodic reconciliation of all configured sources.
type Runner struct {
	service  Service
	interval time.Duration
}

func NewRunner(service Service, interval time.Duration) *Runner {
	return &Runner{service: service, interval: interval}
}

// Run syncs once immediately, then on every tick until the context is
// cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.service.SyncAll(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.service.SyncAll(ctx)
		}
	}
}

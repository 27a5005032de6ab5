package hold

import (
	"context"
	"log"
	"time"
)

// Reaper periodically sweeps holds past their expiry so abandoned
// checkouts return their dates to availability. Expiry through the
// reaper is the only way a hold disappears without explicit
// consumption or release.
type Reaper struct {
	repo     Repository
	interval time.Duration
}

func NewReaper(repo Repository, interval time.Duration) *Reaper {
	return &Reaper{repo: repo, interval: interval}
}

// Run sweeps until the context is cancelled. It is safe to run
// concurrently with admission; the sweep only touches holds already
// past expires_at, which no longer block availability anyway.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				log.Printf("hold reaper sweep failed: %v", err)
			}
		}
	}
}

// Sweep runs a single pass.
func (r *Reaper) Sweep(ctx context.Context) error {
	n, err := r.repo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("hold reaper expired %d hold(s)", n)
	}
	return nil
}

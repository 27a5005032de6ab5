package feedsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pinecove/rental-booking-backend/internal/alert"
	"github.com/pinecove/rental-booking-backend/internal/calendar"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

// Store is the slice of the calendar repository the synchronizer
// writes through. The synchronizer is the only writer of external
// reservations; it never prices anything and never touches bookings.
type Store interface {
	ListExternalBySource(ctx context.Context, source string) ([]*calendar.ExternalReservation, error)
	InsertExternal(ctx context.Context, e *calendar.ExternalReservation) error
	DeleteExternal(ctx context.Context, id string) error
	Occupied(ctx context.Context, r daterange.Range) ([]calendar.Occupancy, error)
}

type Service interface {
	// SyncAll reconciles every configured source concurrently. One
	// source failing or timing out never blocks the others; its error
	// lands in that source's Result.
	SyncAll(ctx context.Context) []Result
	SyncSource(ctx context.Context, src Source) Result
}

// fetchAttempts bounds how often one sync pass retries a failing feed
// before giving up until the next tick.
const fetchAttempts = 3

type service struct {
	sources    []Source
	fetcher    Fetcher
	store      Store
	alerts     alert.Service
	retryDelay time.Duration
}

func NewService(sources []Source, fetcher Fetcher, store Store, alerts alert.Service) Service {
	return &service{sources: sources, fetcher: fetcher, store: store, alerts: alerts, retryDelay: time.Second}
}

func (s *service) SyncAll(ctx context.Context) []Result {
	results := make([]Result, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			results[i] = s.SyncSource(gctx, src)
			return nil
		})
	}
	// Per-source errors are carried in the results, never returned.
	_ = g.Wait()
	return results
}

// SyncSource diffs the upstream feed against recorded reservations for
// that source: new upstream entries are inserted, entries missing
// upstream are removed. Re-running with identical upstream data is a
// no-op.
func (s *service) SyncSource(ctx context.Context, src Source) Result {
	res := Result{Source: src.Name, SyncedAt: time.Now()}

	entries, err := s.fetch(ctx, src)
	if err != nil {
		res.Err = err
		log.Printf("calendar sync %s failed: %v", src.Name, err)
		return res
	}

	existing, err := s.store.ListExternalBySource(ctx, src.Name)
	if err != nil {
		res.Err = err
		return res
	}

	known := make(map[string]*calendar.ExternalReservation, len(existing))
	for _, e := range existing {
		known[e.ExternalRef] = e
	}

	upstream := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		upstream[entry.ExternalRef] = struct{}{}

		if prev, ok := known[entry.ExternalRef]; ok {
			if prev.Range.Equal(entry.Range) {
				continue
			}
			// Dates moved upstream: replace the stale record.
			if err := s.store.DeleteExternal(ctx, prev.ID); err != nil {
				res.Err = err
				return res
			}
			res.Removed++
		}

		if err := s.insert(ctx, src, entry, &res); err != nil {
			res.Err = err
			return res
		}
		res.Added++
	}

	for ref, e := range known {
		if _, ok := upstream[ref]; ok {
			continue
		}
		if err := s.store.DeleteExternal(ctx, e.ID); err != nil {
			res.Err = err
			return res
		}
		res.Removed++
	}

	if res.Added > 0 || res.Removed > 0 {
		log.Printf("calendar sync %s: %d added, %d removed, %d conflict(s)", src.Name, res.Added, res.Removed, res.Conflicts)
	}
	return res
}

// fetch pulls the feed with a bounded retry, backing off exponentially
// between attempts so a transient upstream blip does not stall the
// source until the next sync tick. Each attempt keeps the per-source
// timeout applied by the fetcher.
func (s *service) fetch(ctx context.Context, src Source) ([]Entry, error) {
	delay := s.retryDelay
	var lastErr error
	for attempt := 1; ; attempt++ {
		entries, err := s.fetcher.Fetch(ctx, src)
		if err == nil {
			return entries, nil
		}
		lastErr = err
		if attempt == fetchAttempts {
			return nil, lastErr
		}
		log.Printf("calendar sync %s fetch attempt %d failed, retrying: %v", src.Name, attempt, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// insert records one upstream reservation. When it collides with a
// confirmed internal booking, both records are kept (the external
// platform is its own source of truth) and the conflict is surfaced
// as an operator alert; the engine never auto-cancels either side.
func (s *service) insert(ctx context.Context, src Source, entry Entry, res *Result) error {
	occupied, err := s.store.Occupied(ctx, entry.Range)
	if err != nil && !errors.Is(err, calendar.ErrOverlapInvariant) {
		return err
	}
	for _, o := range occupied {
		if o.Kind == calendar.KindBooking {
			res.Conflicts++
			msg := fmt.Sprintf("feed %s reservation %s overlaps confirmed booking %s", src.Name, entry.ExternalRef, o.ID)
			if _, err := s.alerts.Raise(ctx, alert.KindSyncConflict, entry.Range, msg); err != nil {
				log.Printf("failed to raise sync conflict alert: %v", err)
			}
			break
		}
	}

	return s.store.InsertExternal(ctx, &calendar.ExternalReservation{
		Source:      src.Name,
		ExternalRef: entry.ExternalRef,
		Range:       entry.Range,
	})
}

package calendar

import (
	"context"

	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

type Service interface {
	// Occupied returns all blocking ranges overlapping r. It returns
	// ErrOverlapInvariant when two hard entries (bookings overlapping
	// bookings) are found on the same nights, which should be
	// impossible once finalization has committed them.
	Occupied(ctx context.Context, r daterange.Range) ([]Occupancy, error)

	CreateBlackout(ctx context.Context, r daterange.Range, reason string) (*BlackoutPeriod, error)
	DeleteBlackout(ctx context.Context, id string) error
	ListBlackouts(ctx context.Context, window daterange.Range) ([]*BlackoutPeriod, error)
}

// InvariantReporter surfaces detected calendar corruption to the
// operator. Satisfied by the alert service.
type InvariantReporter interface {
	ReportInvariant(ctx context.Context, r daterange.Range, message string)
}

type service struct {
	repo     Repository
	reporter InvariantReporter
}

func NewService(repo Repository, reporter InvariantReporter) Service {
	return &service{repo: repo, reporter: reporter}
}

func (s *service) Occupied(ctx context.Context, r daterange.Range) ([]Occupancy, error) {
	entries, err := s.repo.Occupied(ctx, r)
	if err != nil {
		return nil, err
	}
	if bookingsOverlapEachOther(entries) {
		if s.reporter != nil {
			s.reporter.ReportInvariant(ctx, r, "two confirmed bookings overlap; admissions halted for these dates")
		}
		return entries, ErrOverlapInvariant
	}
	return entries, nil
}

// bookingsOverlapEachOther detects the fatal case of two confirmed
// bookings claiming the same nights. External reservations overlapping
// internal bookings are an expected sync conflict and handled by the
// synchronizer, not here.
func bookingsOverlapEachOther(entries []Occupancy) bool {
	for i := 0; i < len(entries); i++ {
		if entries[i].Kind != KindBooking {
			continue
		}
		for j := i + 1; j < len(entries); j++ {
			if entries[j].Kind != KindBooking {
				continue
			}
			if entries[i].Range.Overlaps(entries[j].Range) {
				return true
			}
		}
	}
	return false
}

func (s *service) CreateBlackout(ctx context.Context, r daterange.Range, reason string) (*BlackoutPeriod, error) {
	if !r.Start.Before(r.End) {
		return nil, ErrInvalidRange
	}

	b := &BlackoutPeriod{Range: r, Reason: reason}
	if err := s.repo.CreateBlackout(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) DeleteBlackout(ctx context.Context, id string) error {
	return s.repo.DeleteBlackout(ctx, id)
}

func (s *service) ListBlackouts(ctx context.Context, window daterange.Range) ([]*BlackoutPeriod, error) {
	return s.repo.ListBlackouts(ctx, window)
}

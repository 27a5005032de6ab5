package alert

import (
	"context"
	"log"

	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

type Service interface {
	Raise(ctx context.Context, kind Kind, r daterange.Range, message string) (*Alert, error)
	List(ctx context.Context, filter Filter) ([]*Alert, int, error)
	Resolve(ctx context.Context, id string) error
	// HasOpenInvariant reports whether hold admission over r is halted
	// by an unresolved invariant alert.
	HasOpenInvariant(ctx context.Context, r daterange.Range) (bool, error)
	ReportInvariant(ctx context.Context, r daterange.Range, message string)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Raise(ctx context.Context, kind Kind, r daterange.Range, message string) (*Alert, error) {
	// Duplicate suppression: one open alert per kind and range is
	// enough for the operator; re-detections are expected on every
	// availability read until resolution.
	open, err := s.repo.HasOpenOverlapping(ctx, kind, r)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, nil
	}

	a := &Alert{Kind: kind, Message: message, Range: r}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	log.Printf("operator alert raised: kind=%s range=%s message=%q", kind, r, message)
	return a, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Alert, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Resolve(ctx context.Context, id string) error {
	return s.repo.Resolve(ctx, id)
}

func (s *service) HasOpenInvariant(ctx context.Context, r daterange.Range) (bool, error) {
	return s.repo.HasOpenOverlapping(ctx, KindInvariant, r)
}

// ReportInvariant raises an invariant alert without failing the caller:
// the read path that detected the corruption still returns its own
// error, and a failure to persist the alert must not mask it.
func (s *service) ReportInvariant(ctx context.Context, r daterange.Range, message string) {
	if _, err := s.Raise(ctx, KindInvariant, r, message); err != nil {
		log.Printf("failed to record invariant alert for %s: %v", r, err)
	}
}

package hold

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	"github.com/pinecove/rental-booking-backend/internal/pricing"
)

// propertyKey identifies the single property this deployment serves.
// Admission locking is scoped per property so a later multi-property
// extension never contends across unrelated calendars.
const propertyKey = "primary"

// Gate is the serialized availability check run inside the admission
// critical section. A nil return admits the hold; otherwise the
// returned error carries the conflict reason.
type Gate interface {
	Admit(ctx context.Context, r daterange.Range, excludeHoldID string) error
}

// Quoter validates pricing inputs (guest bounds, coupon validity) at
// hold time so a guest learns about a bad coupon before paying.
type Quoter interface {
	Quote(ctx context.Context, in pricing.QuoteInput) (*pricing.Breakdown, error)
}

type RequestInput struct {
	Range      daterange.Range
	SessionID  string
	Guests     int
	CouponCode string
}

type Service interface {
	// Request attempts an exclusive claim on the range. Admission is
	// linearized per property: the first request to pass the
	// availability check wins, every overlapping request after it is
	// rejected with the conflicting reason. A session may hold at most
	// one active range; re-requesting replaces the previous hold.
	Request(ctx context.Context, in RequestInput) (*Hold, error)
	GetByID(ctx context.Context, id string) (*Hold, error)
	// Release is the courtesy fast-path that frees the range
	// immediately instead of waiting for expiry.
	Release(ctx context.Context, id string) error
	ActiveOverlapping(ctx context.Context, r daterange.Range, excludeID string) ([]*Hold, error)
}

type service struct {
	repo   Repository
	gate   Gate
	quoter Quoter
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(repo Repository, gate Gate, quoter Quoter, ttl time.Duration) Service {
	return &service{
		repo:   repo,
		gate:   gate,
		quoter: quoter,
		ttl:    ttl,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// admissionLock returns the mutex serializing admission decisions for
// one property.
func (s *service) admissionLock(property string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[property]
	if !ok {
		l = &sync.Mutex{}
		s.locks[property] = l
	}
	return l
}

func (s *service) Request(ctx context.Context, in RequestInput) (*Hold, error) {
	if !in.Range.Start.Before(in.Range.End) {
		return nil, ErrInvalidRange
	}
	if in.SessionID == "" {
		return nil, ErrNoSession
	}

	now := s.now()

	// Validate pricing inputs before taking the admission lock; a bad
	// coupon or guest count should never consume the critical section.
	if _, err := s.quoter.Quote(ctx, pricing.QuoteInput{
		Range:      in.Range,
		Guests:     in.Guests,
		CouponCode: in.CouponCode,
		At:         now,
	}); err != nil {
		return nil, err
	}

	lock := s.admissionLock(propertyKey)
	lock.Lock()
	defer lock.Unlock()

	// Replace-on-reissue: the session's previous hold no longer counts
	// against its own new request.
	var excludeID string
	prev, err := s.repo.GetActiveBySession(ctx, in.SessionID)
	switch {
	case err == nil:
		excludeID = prev.ID
	case errors.Is(err, ErrNotFound):
	default:
		return nil, err
	}

	// Re-run the availability check inside the serialized section; the
	// advisory quote the guest saw earlier may be stale by now.
	if err := s.gate.Admit(ctx, in.Range, excludeID); err != nil {
		return nil, err
	}

	if prev != nil {
		if err := s.repo.SetStatus(ctx, prev.ID, StatusReleased); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	h := &Hold{
		Range:      in.Range,
		SessionID:  in.SessionID,
		Guests:     in.Guests,
		CouponCode: in.CouponCode,
		ExpiresAt:  now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Hold, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Release(ctx context.Context, id string) error {
	return s.repo.SetStatus(ctx, id, StatusReleased)
}

func (s *service) ActiveOverlapping(ctx context.Context, r daterange.Range, excludeID string) ([]*Hold, error) {
	return s.repo.ActiveOverlapping(ctx, r, excludeID, s.now())
}

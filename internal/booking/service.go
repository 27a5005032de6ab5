package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pinecove/rental-booking-backend/internal/hold"
	"github.com/pinecove/rental-booking-backend/internal/pricing"
)

// GuestInfo is what the guest supplied at checkout.
type GuestInfo struct {
	Name  string
	Email string
}

// PaymentConfirmation is the boundary contract with the external
// payment processor: a success flag and a reference id. Capture
// itself happens outside the engine, and a failed confirmation is
// never retried here (financial operations without idempotency
// guarantees must not be auto-retried).
type PaymentConfirmation struct {
	Reference string
	Succeeded bool
}

type FinalizeInput struct {
	HoldID  string
	Guest   GuestInfo
	Payment PaymentConfirmation
}

type Service interface {
	// Finalize converts a valid hold plus a payment confirmation into
	// a confirmed Booking, consuming the hold atomically. On payment
	// failure the hold is released so other guests are not blocked by
	// a failed attempt.
	Finalize(ctx context.Context, in FinalizeInput) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Cancel(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	holds  hold.Service
	engine pricing.Service
	now    func() time.Time
}

func NewService(repo Repository, holds hold.Service, engine pricing.Service) Service {
	return &service{repo: repo, holds: holds, engine: engine, now: time.Now}
}

func (s *service) Finalize(ctx context.Context, in FinalizeInput) (*Booking, error) {
	if in.Guest.Name == "" || in.Guest.Email == "" {
		return nil, ErrGuestInfo
	}

	h, err := s.holds.GetByID(ctx, in.HoldID)
	if err != nil {
		if errors.Is(err, hold.ErrNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}

	if !in.Payment.Succeeded {
		// Free the dates immediately rather than letting the hold run
		// out its TTL.
		if err := s.holds.Release(ctx, h.ID); err != nil && !errors.Is(err, hold.ErrNotFound) {
			log.Printf("failed to release hold %s after payment failure: %v", h.ID, err)
		}
		return nil, ErrPaymentFailed
	}

	if !h.Live(s.now()) {
		return nil, ErrHoldExpired
	}

	// Recompute the quote with the hold's creation time as the pricing
	// clock. The engine is pure, so this reproduces exactly the price
	// the guest committed to.
	breakdown, err := s.engine.Quote(ctx, pricing.QuoteInput{
		Range:      h.Range,
		Guests:     h.Guests,
		CouponCode: h.CouponCode,
		At:         h.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	b := &Booking{
		Range:      h.Range,
		GuestName:  in.Guest.Name,
		GuestEmail: in.Guest.Email,
		GuestCount: h.Guests,
		Status:     StatusConfirmed,
		Breakdown:  breakdown,
		PaymentRef: in.Payment.Reference,
	}
	if err := s.repo.Finalize(ctx, b, h.ID, h.CouponCode); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Cancel(ctx context.Context, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != StatusConfirmed {
		return ErrNotCancellable
	}
	return s.repo.Cancel(ctx, id)
}

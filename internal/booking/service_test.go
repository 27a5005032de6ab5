package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinecove/rental-booking-backend/internal/hold"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	"github.com/pinecove/rental-booking-backend/internal/pricing"
)

type fakeRepo struct {
	bookings      map[string]*Booking
	finalized     []*Booking
	finalizeErr   error
	lastHoldID    string
	lastCoupon    string
	cancelledIDs  []string
	nextBookingID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[string]*Booking)}
}

func (f *fakeRepo) Finalize(ctx context.Context, b *Booking, holdID, couponCode string) error {
	if f.finalizeErr != nil {
		return f.finalizeErr
	}
	f.nextBookingID++
	b.ID = "booking-1"
	b.CreatedAt = time.Now()
	f.lastHoldID = holdID
	f.lastCoupon = couponCode
	f.finalized = append(f.finalized, b)
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range f.bookings {
		if filter.Status == "" || b.Status == filter.Status {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) Cancel(ctx context.Context, id string) error {
	b, ok := f.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = StatusCancelled
	f.cancelledIDs = append(f.cancelledIDs, id)
	return nil
}

type fakeHolds struct {
	holds    map[string]*hold.Hold
	released []string
}

func newFakeHolds(hs ...*hold.Hold) *fakeHolds {
	f := &fakeHolds{holds: make(map[string]*hold.Hold)}
	for _, h := range hs {
		f.holds[h.ID] = h
	}
	return f
}

func (f *fakeHolds) Request(ctx context.Context, in hold.RequestInput) (*hold.Hold, error) {
	panic("not used")
}

func (f *fakeHolds) GetByID(ctx context.Context, id string) (*hold.Hold, error) {
	h, ok := f.holds[id]
	if !ok {
		return nil, hold.ErrNotFound
	}
	return h, nil
}

func (f *fakeHolds) Release(ctx context.Context, id string) error {
	if _, ok := f.holds[id]; !ok {
		return hold.ErrNotFound
	}
	f.holds[id].Status = hold.StatusReleased
	f.released = append(f.released, id)
	return nil
}

func (f *fakeHolds) ActiveOverlapping(ctx context.Context, r daterange.Range, excludeID string) ([]*hold.Hold, error) {
	return nil, nil
}

type fakeEngine struct {
	quotedAt time.Time
	err      error
}

func (f *fakeEngine) Quote(ctx context.Context, in pricing.QuoteInput) (*pricing.Breakdown, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.quotedAt = in.At
	return &pricing.Breakdown{Currency: "USD", Nights: in.Range.Nights(), Subtotal: 150000, Tax: 18000, Total: 168000}, nil
}

func (f *fakeEngine) MinimumNights(ctx context.Context, r daterange.Range) (int, error) {
	return 1, nil
}

func mustRange(t *testing.T, start, end string) daterange.Range {
	t.Helper()
	r, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return r
}

func liveHold(t *testing.T) *hold.Hold {
	t.Helper()
	return &hold.Hold{
		ID:         "h1",
		Range:      mustRange(t, "2026-01-10", "2026-01-13"),
		SessionID:  "s1",
		Guests:     2,
		CouponCode: "SUMMER10",
		Status:     hold.StatusActive,
		ExpiresAt:  time.Now().Add(10 * time.Minute),
		CreatedAt:  time.Now().Add(-5 * time.Minute),
	}
}

func TestFinalize(t *testing.T) {
	repo := newFakeRepo()
	h := liveHold(t)
	holds := newFakeHolds(h)
	engine := &fakeEngine{}
	svc := NewService(repo, holds, engine)

	b, err := svc.Finalize(context.Background(), FinalizeInput{
		HoldID:  h.ID,
		Guest:   GuestInfo{Name: "Ada Lovelace", Email: "ada@example.com"},
		Payment: PaymentConfirmation{Reference: "pay_123", Succeeded: true},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, h.Range, b.Range)
	assert.Equal(t, 2, b.GuestCount)
	assert.Equal(t, "pay_123", b.PaymentRef)
	require.NotNil(t, b.Breakdown)
	assert.Equal(t, int64(168000), int64(b.Breakdown.Total))

	// The quote is recomputed at the hold's creation time so the guest
	// pays exactly what they were shown.
	assert.Equal(t, h.CreatedAt, engine.quotedAt)
	assert.Equal(t, h.ID, repo.lastHoldID)
	assert.Equal(t, "SUMMER10", repo.lastCoupon)
}

func TestFinalizeGuestInfoRequired(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeHolds(), &fakeEngine{})

	_, err := svc.Finalize(context.Background(), FinalizeInput{
		HoldID:  "h1",
		Guest:   GuestInfo{Name: "Ada Lovelace"},
		Payment: PaymentConfirmation{Reference: "pay_123", Succeeded: true},
	})
	assert.ErrorIs(t, err, ErrGuestInfo)
}

func TestFinalizeHoldNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeHolds(), &fakeEngine{})

	_, err := svc.Finalize(context.Background(), FinalizeInput{
		HoldID:  "missing",
		Guest:   GuestInfo{Name: "Ada Lovelace", Email: "ada@example.com"},
		Payment: PaymentConfirmation{Reference: "pay_123", Succeeded: true},
	})
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestFinalizeHoldExpired(t *testing.T) {
	h := liveHold(t)
	h.ExpiresAt = time.Now().Add(-time.Minute)
	repo := newFakeRepo()
	svc := NewService(repo, newFakeHolds(h), &fakeEngine{})

	_, err := svc.Finalize(context.Background(), FinalizeInput{
		HoldID:  h.ID,
		Guest:   GuestInfo{Name: "Ada Lovelace", Email: "ada@example.com"},
		Payment: PaymentConfirmation{Reference: "pay_123", Succeeded: true},
	})
	assert.ErrorIs(t, err, ErrHoldExpired)
	assert.Empty(t, repo.finalized, "no booking may be created from an expired hold")
}

func TestFinalizePaymentFailure(t *testing.T) {
	h := liveHold(t)
	repo := newFakeRepo()
	holds := newFakeHolds(h)
	svc := NewService(repo, holds, &fakeEngine{})

	_, err := svc.Finalize(context.Background(), FinalizeInput{
		HoldID:  h.ID,
		Guest:   GuestInfo{Name: "Ada Lovelace", Email: "ada@example.com"},
		Payment: PaymentConfirmation{Reference: "pay_123", Succeeded: false},
	})
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, []string{h.ID}, holds.released, "the hold is released so the dates free up immediately")
	assert.Empty(t, repo.finalized)
}

func TestCancel(t *testing.T) {
	repo := newFakeRepo()
	repo.bookings["b1"] = &Booking{ID: "b1", Status: StatusConfirmed}
	repo.bookings["b2"] = &Booking{ID: "b2", Status: StatusCancelled}
	svc := NewService(repo, newFakeHolds(), &fakeEngine{})

	t.Run("Confirmed Booking", func(t *testing.T) {
		require.NoError(t, svc.Cancel(context.Background(), "b1"))
		assert.Equal(t, StatusCancelled, repo.bookings["b1"].Status)
	})

	t.Run("Already Cancelled", func(t *testing.T) {
		err := svc.Cancel(context.Background(), "b2")
		assert.ErrorIs(t, err, ErrNotCancellable)
	})

	t.Run("Missing Booking", func(t *testing.T) {
		err := svc.Cancel(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

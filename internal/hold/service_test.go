package hold

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	"github.com/pinecove/rental-booking-backend/internal/pricing"
)

// memRepo is an in-memory Repository. It intentionally performs no
// admission checking of its own; exclusivity must come from the
// service's serialized gate check.
type memRepo struct {
	mu     sync.Mutex
	nextID int
	holds  map[string]*Hold
}

func newMemRepo() *memRepo {
	return &memRepo{holds: make(map[string]*Hold)}
}

func (m *memRepo) Create(ctx context.Context, h *Hold) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	h.ID = fmt.Sprintf("hold-%d", m.nextID)
	h.Status = StatusActive
	h.CreatedAt = time.Now()
	cp := *h
	m.holds[h.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.holds[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *memRepo) GetActiveBySession(ctx context.Context, sessionID string) (*Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.holds {
		if h.SessionID == sessionID && h.Status == StatusActive {
			cp := *h
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) ActiveOverlapping(ctx context.Context, r daterange.Range, excludeID string, now time.Time) ([]*Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Hold
	for _, h := range m.holds {
		if h.ID != excludeID && h.Live(now) && h.Range.Overlaps(r) {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) SetStatus(ctx context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.holds[id]
	if !ok || h.Status != StatusActive {
		return ErrNotFound
	}
	h.Status = status
	return nil
}

func (m *memRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, h := range m.holds {
		if h.Status == StatusActive && !now.Before(h.ExpiresAt) {
			h.Status = StatusExpired
			n++
		}
	}
	return n, nil
}

func (m *memRepo) activeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, h := range m.holds {
		if h.Status == StatusActive {
			n++
		}
	}
	return n
}

// exclusionRepo layers the storage-level admission semantics over
// memRepo: Create expires overdue rows on the requested range, then
// rejects any remaining live overlap, mirroring the pgx Create
// transaction and its exclusion constraint.
type exclusionRepo struct {
	*memRepo
}

func (m *exclusionRepo) Create(ctx context.Context, h *Hold) error {
	m.mu.Lock()
	now := time.Now()
	for _, existing := range m.holds {
		if existing.Status != StatusActive || !existing.Range.Overlaps(h.Range) {
			continue
		}
		if !existing.Live(now) {
			existing.Status = StatusExpired
			continue
		}
		m.mu.Unlock()
		return ErrRangeHeld
	}
	m.mu.Unlock()
	return m.memRepo.Create(ctx, h)
}

// repoGate admits a range only while no live hold overlaps it, the way
// the availability resolver does against real storage.
type repoGate struct {
	repo *memRepo
	now  func() time.Time
}

func (g *repoGate) Admit(ctx context.Context, r daterange.Range, excludeHoldID string) error {
	live, err := g.repo.ActiveOverlapping(ctx, r, excludeHoldID, g.now())
	if err != nil {
		return err
	}
	if len(live) > 0 {
		return ErrRangeHeld
	}
	return nil
}

type okQuoter struct {
	err error
}

func (q *okQuoter) Quote(ctx context.Context, in pricing.QuoteInput) (*pricing.Breakdown, error) {
	if q.err != nil {
		return nil, q.err
	}
	return &pricing.Breakdown{Total: 10000}, nil
}

func newTestService(repo *memRepo, ttl time.Duration) Service {
	return NewService(repo, &repoGate{repo: repo, now: time.Now}, &okQuoter{}, ttl)
}

func mustRange(t *testing.T, start, end string) daterange.Range {
	t.Helper()
	r, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return r
}

func TestRequest(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, 15*time.Minute)
	r := mustRange(t, "2026-01-10", "2026-01-13")

	h, err := svc.Request(context.Background(), RequestInput{Range: r, SessionID: "s1", Guests: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, StatusActive, h.Status)
	assert.True(t, h.Live(time.Now()))
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), h.ExpiresAt, 2*time.Second)
}

func TestRequestValidation(t *testing.T) {
	repo := newMemRepo()
	r := mustRange(t, "2026-01-10", "2026-01-13")

	t.Run("Missing Session", func(t *testing.T) {
		svc := newTestService(repo, time.Minute)
		_, err := svc.Request(context.Background(), RequestInput{Range: r, Guests: 2})
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("Invalid Range", func(t *testing.T) {
		svc := newTestService(repo, time.Minute)
		_, err := svc.Request(context.Background(), RequestInput{SessionID: "s1", Guests: 2})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("Bad Pricing Input Fails Before Admission", func(t *testing.T) {
		svc := NewService(repo, &repoGate{repo: repo, now: time.Now}, &okQuoter{err: pricing.ErrInvalidCoupon}, time.Minute)
		_, err := svc.Request(context.Background(), RequestInput{Range: r, SessionID: "s1", Guests: 2, CouponCode: "NOPE"})
		assert.ErrorIs(t, err, pricing.ErrInvalidCoupon)
		assert.Equal(t, 0, repo.activeCount())
	})
}

func TestRequestConcurrentAdmission(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, 15*time.Minute)
	r := mustRange(t, "2026-01-10", "2026-01-13")

	const workers = 25
	var wg sync.WaitGroup
	results := make([]error, workers)

	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = svc.Request(context.Background(), RequestInput{
				Range:     r,
				SessionID: fmt.Sprintf("session-%d", i),
				Guests:    2,
			})
		}()
	}
	wg.Wait()

	won, rejected := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrRangeHeld):
			rejected++
		default:
			t.Fatalf("unexpected admission error: %v", err)
		}
	}

	assert.Equal(t, 1, won, "exactly one request may win the range")
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, 1, repo.activeCount())
}

func TestRequestOverUnsweptExpiredHold(t *testing.T) {
	mem := newMemRepo()
	repo := &exclusionRepo{memRepo: mem}
	r := mustRange(t, "2026-01-10", "2026-01-13")

	// Negative TTL leaves a hold past its expiry but still marked
	// active, as happens between reaper sweeps.
	stale := NewService(repo, &repoGate{repo: mem, now: time.Now}, &okQuoter{}, -time.Minute)
	first, err := stale.Request(context.Background(), RequestInput{Range: r, SessionID: "s1", Guests: 2})
	require.NoError(t, err)

	// A new session must win the same range without waiting for the
	// reaper; admission expires the stale row on its way in.
	svc := NewService(repo, &repoGate{repo: mem, now: time.Now}, &okQuoter{}, 15*time.Minute)
	second, err := svc.Request(context.Background(), RequestInput{Range: r, SessionID: "s2", Guests: 2})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, second.Status)

	got, err := svc.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)
	assert.Equal(t, 1, mem.activeCount())
}

func TestRequestReplacesSessionHold(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, 15*time.Minute)

	first, err := svc.Request(context.Background(), RequestInput{
		Range:     mustRange(t, "2026-01-10", "2026-01-13"),
		SessionID: "s1",
		Guests:    2,
	})
	require.NoError(t, err)

	// Same session re-requests overlapping dates; its own hold must not
	// count against it.
	second, err := svc.Request(context.Background(), RequestInput{
		Range:     mustRange(t, "2026-01-11", "2026-01-14"),
		SessionID: "s1",
		Guests:    2,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := svc.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReleased, got.Status)
	assert.Equal(t, 1, repo.activeCount())
}

func TestRelease(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, 15*time.Minute)
	r := mustRange(t, "2026-01-10", "2026-01-13")

	h, err := svc.Request(context.Background(), RequestInput{Range: r, SessionID: "s1", Guests: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Release(context.Background(), h.ID))

	// The range frees up immediately for another session.
	_, err = svc.Request(context.Background(), RequestInput{Range: r, SessionID: "s2", Guests: 2})
	assert.NoError(t, err)

	t.Run("Release Missing Hold", func(t *testing.T) {
		err := svc.Release(context.Background(), "no-such-hold")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReaperSweep(t *testing.T) {
	repo := newMemRepo()
	// Negative TTL creates a hold already past its expiry.
	svc := newTestService(repo, -time.Minute)

	h, err := svc.Request(context.Background(), RequestInput{
		Range:     mustRange(t, "2026-01-10", "2026-01-13"),
		SessionID: "s1",
		Guests:    2,
	})
	require.NoError(t, err)

	reaper := NewReaper(repo, time.Minute)
	require.NoError(t, reaper.Sweep(context.Background()))

	got, err := svc.GetByID(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)
}

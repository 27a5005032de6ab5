package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinecove/rental-booking-backend/internal/calendar"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

const testBlackoutID = "5a4b3c2d-1e0f-4a9b-8c7d-6e5f4a3b2c1d"

type fakeService struct {
	entries  []calendar.Occupancy
	blackout *calendar.BlackoutPeriod
	deleted  []string
}

func (f *fakeService) Occupied(ctx context.Context, r daterange.Range) ([]calendar.Occupancy, error) {
	var out []calendar.Occupancy
	for _, e := range f.entries {
		if e.Range.Overlaps(r) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeService) CreateBlackout(ctx context.Context, r daterange.Range, reason string) (*calendar.BlackoutPeriod, error) {
	f.blackout = &calendar.BlackoutPeriod{ID: testBlackoutID, Range: r, Reason: reason, CreatedAt: time.Now()}
	return f.blackout, nil
}

func (f *fakeService) DeleteBlackout(ctx context.Context, id string) error {
	if f.blackout == nil || f.blackout.ID != id {
		return calendar.ErrNotFound
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeService) ListBlackouts(ctx context.Context, window daterange.Range) ([]*calendar.BlackoutPeriod, error) {
	if f.blackout == nil || !f.blackout.Range.Overlaps(window) {
		return nil, nil
	}
	return []*calendar.BlackoutPeriod{f.blackout}, nil
}

func newRouter(svc calendar.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc))
	return r
}

func execute(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func mustRange(t *testing.T, start, end string) daterange.Range {
	t.Helper()
	r, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return r
}

func TestOccupiedWindow(t *testing.T) {
	svc := &fakeService{entries: []calendar.Occupancy{
		{Kind: calendar.KindBooking, ID: "b1", Range: mustRange(t, "2026-01-10", "2026-01-13")},
		{Kind: calendar.KindExternal, ID: "e1", Range: mustRange(t, "2026-01-20", "2026-01-24")},
	}}
	r := newRouter(svc)

	w := execute(r, "GET", "/v1/calendar?start=2026-01-01&end=2026-02-01", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []OccupancyResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "booking", resp.Items[0].Kind)
	assert.Equal(t, "2026-01-10", resp.Items[0].Start)

	t.Run("Missing Window", func(t *testing.T) {
		w := execute(r, "GET", "/v1/calendar", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBlackoutRoutes(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	t.Run("Create", func(t *testing.T) {
		w := execute(r, "POST", "/v1/blackouts", CreateBlackoutRequest{
			Start:  "2026-03-01",
			End:    "2026-03-10",
			Reason: "roof repairs",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp BlackoutResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, testBlackoutID, resp.ID)
		assert.Equal(t, "roof repairs", resp.Reason)
	})

	t.Run("Create With Inverted Dates", func(t *testing.T) {
		w := execute(r, "POST", "/v1/blackouts", CreateBlackoutRequest{
			Start: "2026-03-10",
			End:   "2026-03-01",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List", func(t *testing.T) {
		w := execute(r, "GET", "/v1/blackouts?start=2026-03-01&end=2026-04-01", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Items []BlackoutResponse `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Items, 1)
	})

	t.Run("Delete", func(t *testing.T) {
		w := execute(r, "DELETE", "/v1/blackouts/"+testBlackoutID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{testBlackoutID}, svc.deleted)
	})

	t.Run("Delete Invalid ID", func(t *testing.T) {
		w := execute(r, "DELETE", "/v1/blackouts/nope", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

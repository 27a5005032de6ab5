package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinecove/rental-booking-backend/internal/alert"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	"github.com/pinecove/rental-booking-backend/internal/pkg/response"
)

const testAlertID = "9b8c7d6e-5f4a-4b3c-8d2e-1f0a9b8c7d6e"

type fakeService struct {
	alert    *alert.Alert
	resolved []string
}

func (f *fakeService) Raise(ctx context.Context, kind alert.Kind, r daterange.Range, message string) (*alert.Alert, error) {
	return nil, nil
}

func (f *fakeService) List(ctx context.Context, filter alert.Filter) ([]*alert.Alert, int, error) {
	if f.alert == nil || (filter.Kind != "" && f.alert.Kind != filter.Kind) {
		return nil, 0, nil
	}
	return []*alert.Alert{f.alert}, 1, nil
}

func (f *fakeService) Resolve(ctx context.Context, id string) error {
	if f.alert == nil || f.alert.ID != id {
		return alert.ErrNotFound
	}
	f.resolved = append(f.resolved, id)
	return nil
}

func (f *fakeService) HasOpenInvariant(ctx context.Context, r daterange.Range) (bool, error) {
	return false, nil
}

func (f *fakeService) ReportInvariant(ctx context.Context, r daterange.Range, message string) {}

func newRouter(svc alert.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc))
	return r
}

func testAlert() *alert.Alert {
	rng, _ := daterange.Parse("2026-01-10", "2026-01-14")
	return &alert.Alert{
		ID:        testAlertID,
		Kind:      alert.KindSyncConflict,
		Message:   "feed airbnb reservation r1 overlaps confirmed booking b1",
		Range:     rng,
		CreatedAt: time.Now(),
	}
}

func execute(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListAlerts(t *testing.T) {
	r := newRouter(&fakeService{alert: testAlert()})

	t.Run("All", func(t *testing.T) {
		w := execute(r, "GET", "/v1/alerts")
		require.Equal(t, http.StatusOK, w.Code)

		var resp response.PageResponse[AlertResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "sync_conflict", resp.Items[0].Kind)
		assert.Equal(t, "2026-01-10", resp.Items[0].Start)
	})

	t.Run("Filtered Out By Kind", func(t *testing.T) {
		w := execute(r, "GET", "/v1/alerts?kind=invariant_violation")
		require.Equal(t, http.StatusOK, w.Code)

		var resp response.PageResponse[AlertResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Items)
	})

	t.Run("Bad Kind", func(t *testing.T) {
		w := execute(r, "GET", "/v1/alerts?kind=weird")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestResolveAlert(t *testing.T) {
	svc := &fakeService{alert: testAlert()}
	r := newRouter(svc)

	t.Run("Resolved", func(t *testing.T) {
		w := execute(r, "POST", "/v1/alerts/"+testAlertID+"/resolve")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{testAlertID}, svc.resolved)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		w := execute(r, "POST", "/v1/alerts/nope/resolve")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown ID", func(t *testing.T) {
		w := execute(r, "POST", "/v1/alerts/9b8c7d6e-5f4a-4b3c-8d2e-000000000000/resolve")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

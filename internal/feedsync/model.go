package feedsync

import (
	"net/http"
	"time"

	"github.com/pinecove/rental-booking-backend/internal/pkg/apperror"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

var ErrFeedUnavailable = apperror.New(http.StatusBadGateway, apperror.KindExternal, "external calendar feed could not be fetched")

// Source is one configured external calendar feed.
type Source struct {
	Name string
	URL  string
}

// Entry is a reservation parsed out of a feed: the date range, plus
// the upstream identifier used for diffing. Feed format details stay
// inside the fetcher; the reconciler only sees these tuples.
type Entry struct {
	Range       daterange.Range
	ExternalRef string
}

// Result summarizes one source's reconciliation pass.
type Result struct {
	Source    string
	Added     int
	Removed   int
	Conflicts int
	Err       error
	SyncedAt  time.Time
}

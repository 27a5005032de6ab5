package feedsync

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

const sampleFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Channel//Hosting Calendar 1.0//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART;VALUE=DATE:20260110\r\n" +
	"DTEND;VALUE=DATE:20260113\r\n" +
	"UID:abc123@channel.example.com\r\n" +
	"SUMMARY:Reserved\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART:20260201T140000Z\r\n" +
	"DTEND:20260204T100000Z\r\n" +
	"UID:def456@channel.exa\r\n" +
	" mple.com\r\n" +
	"SUMMARY:Reserved\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseICal(t *testing.T) {
	entries, err := ParseICal(strings.NewReader(sampleFeed))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	want1, _ := daterange.Parse("2026-01-10", "2026-01-13")
	assert.Equal(t, want1, entries[0].Range)
	assert.Equal(t, "abc123@channel.example.com", entries[0].ExternalRef)

	// Timestamps collapse to whole days; the folded UID line is joined.
	want2, _ := daterange.Parse("2026-02-01", "2026-02-04")
	assert.Equal(t, want2, entries[1].Range)
	assert.Equal(t, "def456@channel.example.com", entries[1].ExternalRef)
}

func TestParseICalSkipsBrokenEvents(t *testing.T) {
	feed := "BEGIN:VCALENDAR\r\n" +
		"BEGIN:VEVENT\r\n" +
		"DTSTART;VALUE=DATE:20260110\r\n" +
		"DTEND;VALUE=DATE:20260113\r\n" +
		"SUMMARY:No UID\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:inverted@example.com\r\n" +
		"DTSTART;VALUE=DATE:20260113\r\n" +
		"DTEND;VALUE=DATE:20260110\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:nodates@example.com\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	entries, err := ParseICal(strings.NewReader(feed))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseICalEmptyFeed(t *testing.T) {
	entries, err := ParseICal(strings.NewReader("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

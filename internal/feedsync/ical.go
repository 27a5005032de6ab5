package feedsync

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

// ParseICal extracts reservation entries from an iCalendar stream.
// Only the VEVENT fields the engine consumes are read: DTSTART, DTEND
// and UID. Events without a UID or with a degenerate range are
// skipped; booking channels export whole-day stays, so timestamps are
// truncated to their calendar day.
func ParseICal(r io.Reader) ([]Entry, error) {
	var (
		entries []Entry
		inEvent bool
		uid     string
		start   time.Time
		end     time.Time
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var prev string
	flushLine := func(line string) {
		switch {
		case line == "BEGIN:VEVENT":
			inEvent = true
			uid, start, end = "", time.Time{}, time.Time{}
		case line == "END:VEVENT":
			if inEvent && uid != "" && start.Before(end) {
				rng, err := daterange.New(start, end)
				if err == nil {
					entries = append(entries, Entry{Range: rng, ExternalRef: uid})
				}
			}
			inEvent = false
		case inEvent:
			name, value, ok := splitProperty(line)
			if !ok {
				return
			}
			switch name {
			case "UID":
				uid = value
			case "DTSTART":
				if t, err := parseICalDate(value); err == nil {
					start = t
				}
			case "DTEND":
				if t, err := parseICalDate(value); err == nil {
					end = t
				}
			}
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		// Folded lines (RFC 5545 §3.1) continue with a leading space.
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			prev += line[1:]
			continue
		}
		if prev != "" {
			flushLine(prev)
		}
		prev = line
	}
	if prev != "" {
		flushLine(prev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ical stream failed: %w", err)
	}
	return entries, nil
}

// splitProperty separates "DTSTART;VALUE=DATE:20260110" into its
// property name and value, dropping any parameters.
func splitProperty(line string) (name, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	name = line[:idx]
	value = line[idx+1:]
	if semi := strings.Index(name, ";"); semi >= 0 {
		name = name[:semi]
	}
	return name, value, true
}

func parseICalDate(value string) (time.Time, error) {
	for _, layout := range []string{"20060102", "20060102T150405Z", "20060102T150405"} {
		if t, err := time.Parse(layout, value); err == nil {
			return daterange.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported ical date %q", value)
}

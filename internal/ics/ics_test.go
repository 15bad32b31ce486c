package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couplecal/internal/holiday"
)

var stamp = time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

func feedConfig(from, to int) FeedConfig {
	return FeedConfig{Location: time.UTC, FromYear: from, ToYear: to, Stamp: stamp}
}

func TestRenderFeed_Shape(t *testing.T) {
	body, err := RenderFeed(holiday.Catalog(), feedConfig(2025, 2027))
	require.NoError(t, err)

	s := string(body)
	assert.Contains(t, s, "BEGIN:VCALENDAR")
	assert.Contains(t, s, productID)
	assert.Contains(t, s, "METHOD:PUBLISH")
	assert.Contains(t, s, "X-COUPLECAL-HOLIDAY:halloween")
	assert.Contains(t, s, "20251031")

	// Nine recurring series plus three explicit Easter events.
	assert.Equal(t, 12, strings.Count(s, "BEGIN:VEVENT"))
	assert.Equal(t, 9, strings.Count(s, "RRULE:"))
}

func TestRenderFeed_StableUIDs(t *testing.T) {
	a, err := RenderFeed(holiday.Catalog(), feedConfig(2025, 2025))
	require.NoError(t, err)
	b, err := RenderFeed(holiday.Catalog(), feedConfig(2025, 2025))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestBuildFeed_RejectsInvertedYears(t *testing.T) {
	_, err := BuildFeed(holiday.Catalog(), feedConfig(2026, 2025))
	assert.Error(t, err)
}

func TestBuildFeed_SkipsUnknownRules(t *testing.T) {
	defs := []holiday.Definition{
		{Name: "Bogus", Type: holiday.TypeHoliday, Date: holiday.Calculated(holiday.Rule{Kind: 42})},
	}
	body, err := RenderFeed(defs, feedConfig(2025, 2025))
	require.NoError(t, err)
	assert.NotContains(t, string(body), "BEGIN:VEVENT")
}

func TestParseICS(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:anniv@test",
		"DTSTAMP:20250101T000000Z",
		"SUMMARY:Anniversary",
		"X-COUPLECAL-HOLIDAY:anniversary",
		"DTSTART;VALUE=DATE:20200614",
		"DTEND;VALUE=DATE:20200615",
		"RRULE:FREQ=YEARLY",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:dinner@test",
		"DTSTAMP:20250101T000000Z",
		"SUMMARY:Dinner",
		"DTSTART:20250214T190000Z",
		"DTEND:20250214T210000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:No UID",
		"DTSTART;VALUE=DATE:20250101",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	events, err := ParseICS([]byte(body), time.UTC)
	require.NoError(t, err)
	// The timed event and the event without a UID are skipped.
	require.Len(t, events, 1)

	anniv := events[0]
	assert.Equal(t, "anniv@test", anniv.UID)
	assert.Equal(t, "anniversary", anniv.HolidayID)
	assert.Equal(t, time.Date(2020, time.June, 14, 0, 0, 0, 0, time.UTC), anniv.Start)
	assert.Equal(t, time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC), anniv.End)
	assert.Equal(t, "FREQ=YEARLY", anniv.RawRRule)

	res, err := ExpandOccurrences(events, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:        time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var starts []string
	for _, occ := range res.Occurrences {
		assert.True(t, occ.AllDay)
		assert.Equal(t, occ.Start.AddDate(0, 0, 1), occ.End)
		starts = append(starts, occ.Start.Format("2006-01-02"))
	}
	assert.Equal(t, []string{"2023-06-14", "2024-06-14", "2025-06-14"}, starts)
}

func TestParseICS_RenderedFeed(t *testing.T) {
	body, err := RenderFeed(holiday.Catalog(), feedConfig(2025, 2025))
	require.NoError(t, err)

	events, err := ParseICS(body, time.UTC)
	require.NoError(t, err)
	require.Len(t, events, 10)

	for _, ev := range events {
		if ev.HolidayID != "easter" {
			continue
		}
		assert.Equal(t, time.Date(2025, time.April, 20, 0, 0, 0, 0, time.UTC), ev.Start)
		assert.Equal(t, time.Date(2025, time.April, 21, 0, 0, 0, 0, time.UTC), ev.End)
		assert.Empty(t, ev.RawRRule)
		return
	}
	t.Fatal("easter missing from parsed feed")
}

func TestParseICS_Empty(t *testing.T) {
	_, err := ParseICS(nil, time.UTC)
	assert.Error(t, err)
}

func TestExpandOccurrences_Cap(t *testing.T) {
	events := []ParsedEvent{{
		UID:      "daily",
		Start:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY",
	}}
	res, err := ExpandOccurrences(events, ExpandConfig{
		RangeStart:             time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:               time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
		MaxOccurrencesPerEvent: 10,
	})
	require.NoError(t, err)
	assert.Len(t, res.Occurrences, 10)
	assert.Equal(t, []string{"daily"}, res.TruncatedEvents)
}

func TestExpandOccurrences_InvertedRange(t *testing.T) {
	_, err := ExpandOccurrences(nil, ExpandConfig{
		RangeStart: time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	require.NoError(t, Verify(feedConfig(2024, 2030)))

	seoul := time.FixedZone("KST", 9*3600)
	require.NoError(t, Verify(FeedConfig{Location: seoul, FromYear: 1999, ToYear: 2001, Stamp: stamp}))
}

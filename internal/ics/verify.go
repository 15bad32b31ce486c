package ics

import (
	"errors"
	"fmt"
	"time"

	"couplecal/internal/holiday"
	appLog "couplecal/internal/log"
)

// ErrFeedMismatch is wrapped by every discrepancy Verify reports.
var ErrFeedMismatch = errors.New("feed does not match holiday schedule")

// Verify renders the catalog feed for cfg, parses it back, expands it per
// year and checks that every year in [FromYear, ToYear] lists exactly the
// dates holiday.ForYear computes. All discrepancies are joined into the
// returned error.
func Verify(cfg FeedConfig) error {
	if err := cfg.normalize(); err != nil {
		return err
	}

	body, err := RenderFeed(holiday.Catalog(), cfg)
	if err != nil {
		return fmt.Errorf("verify: render: %w", err)
	}
	events, err := ParseICS(body, cfg.Location)
	if err != nil {
		return fmt.Errorf("verify: parse: %w", err)
	}

	var errs []error
	for year := cfg.FromYear; year <= cfg.ToYear; year++ {
		res, err := ExpandOccurrences(events, ExpandConfig{
			DisplayLocation: cfg.Location,
			RangeStart:      time.Date(year, time.January, 1, 0, 0, 0, 0, cfg.Location),
			RangeEnd:        time.Date(year, time.December, 31, 0, 0, 0, 0, cfg.Location),
		})
		if err != nil {
			return fmt.Errorf("verify: expand %d: %w", year, err)
		}

		got := make(map[string][]string)
		for _, occ := range res.Occurrences {
			got[occ.HolidayID] = append(got[occ.HolidayID], occ.Start.Format("2006-01-02"))
		}

		for _, want := range holiday.ForYear(year, cfg.Location) {
			id := want.Holiday.ID()
			wantDate := want.Date.Format("2006-01-02")
			dates := got[id]
			delete(got, id)

			if len(dates) != 1 || dates[0] != wantDate {
				errs = append(errs, fmt.Errorf("%w: %s %d: feed has %v, want %s", ErrFeedMismatch, id, year, dates, wantDate))
			}
		}
		for id, dates := range got {
			errs = append(errs, fmt.Errorf("%w: %d: unexpected %s on %v", ErrFeedMismatch, year, id, dates))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	appLog.Debug("feed verified", "from_year", cfg.FromYear, "to_year", cfg.ToYear, "events", len(events))
	return nil
}

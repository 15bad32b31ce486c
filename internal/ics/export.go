package ics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"couplecal/internal/holiday"
	appLog "couplecal/internal/log"
)

const (
	productID = "-//couplecal//holidays//EN"

	// propertyHolidayID carries the catalog ID on each VEVENT so a parsed
	// feed can be matched back to its definition.
	propertyHolidayID = ical.ComponentProperty("X-COUPLECAL-HOLIDAY")
)

// FeedConfig controls which years the feed anchors and lists.
type FeedConfig struct {
	// Name is shown by calendar clients (X-WR-CALNAME).
	Name string

	// Location is the zone all-day dates are computed in. If nil,
	// time.Local is used.
	Location *time.Location

	// FromYear anchors recurring series and is the first year Easter is
	// listed for. ToYear is the last year Easter is listed for.
	FromYear int
	ToYear   int

	// Stamp is written as DTSTAMP. If zero, time.Now() is used.
	Stamp time.Time
}

func (c *FeedConfig) normalize() error {
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.Name == "" {
		c.Name = "Couple holidays"
	}
	if c.Stamp.IsZero() {
		c.Stamp = time.Now()
	}
	if c.ToYear < c.FromYear {
		return errors.New("feed: ToYear is before FromYear")
	}
	return nil
}

// BuildFeed renders defs as an iCalendar feed.
//
//   - Holidays with an RRULE form become one all-day VEVENT with a yearly
//     RRULE, starting at their FromYear date.
//   - Easter becomes one all-day VEVENT per year in [FromYear, ToYear].
//   - Definitions whose rule cannot be resolved are skipped.
func BuildFeed(defs []holiday.Definition, cfg FeedConfig) (*ical.Calendar, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetName(cfg.Name)
	cal.SetXWRCalName(cfg.Name)
	cal.SetXWRTimezone(cfg.Location.String())

	for _, def := range defs {
		first, ok := holiday.Resolve(def, cfg.FromYear, cfg.Location)
		if !ok {
			appLog.Debug("feed: skipping unresolvable holiday", "name", def.Name)
			continue
		}

		rr, recurring, err := holiday.Recurrence(def, first)
		if err != nil {
			return nil, fmt.Errorf("feed: recurrence for %s: %w", def.Name, err)
		}

		if recurring {
			ev := addEvent(cal, def.UID(), def, first, cfg.Stamp)
			ev.AddRrule(rr.OrigOptions.RRuleString())
			continue
		}

		// No RRULE form: list each year explicitly.
		for year := cfg.FromYear; year <= cfg.ToYear; year++ {
			date, ok := holiday.Resolve(def, year, cfg.Location)
			if !ok {
				continue
			}
			addEvent(cal, strconv.Itoa(year)+"-"+def.UID(), def, date, cfg.Stamp)
		}
	}

	return cal, nil
}

// RenderFeed is BuildFeed serialized to bytes.
func RenderFeed(defs []holiday.Definition, cfg FeedConfig) ([]byte, error) {
	cal, err := BuildFeed(defs, cfg)
	if err != nil {
		return nil, err
	}
	return []byte(cal.Serialize()), nil
}

func addEvent(cal *ical.Calendar, uid string, def holiday.Definition, date time.Time, stamp time.Time) *ical.VEvent {
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(stamp)
	ev.SetSummary(summaryFor(def))
	ev.SetAllDayStartAt(date)
	ev.SetAllDayEndAt(date.AddDate(0, 0, 1))
	ev.SetProperty(ical.ComponentPropertyCategories, string(def.Type))
	ev.SetProperty(ical.ComponentPropertyTransp, "TRANSPARENT")
	ev.SetProperty(propertyHolidayID, def.ID())
	return ev
}

func summaryFor(def holiday.Definition) string {
	if def.Emoji == "" {
		return def.Name
	}
	return def.Emoji + " " + def.Name
}

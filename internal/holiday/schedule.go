package holiday

import (
	"slices"
	"time"
)

// Resolve returns the date of def in year, at midnight in loc.
// ok is false when the definition carries a rule this package does not
// know or a fixed month/day that does not exist in year (including the
// zero DateSpec); such holidays are skipped by every query rather than
// reported.
func Resolve(def Definition, year int, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}

	if month, day, ok := def.Date.MonthDay(); ok {
		return fixedDate(year, month, day, loc)
	}

	rule, _ := def.Date.Rule()
	switch rule.Kind {
	case RuleEaster:
		return EasterSunday(year, loc), true
	case RuleNthWeekday:
		return NthWeekdayOfMonth(year, rule.Month, rule.Weekday, rule.N, loc), true
	default:
		return time.Time{}, false
	}
}

// ResolveDateForYear is Resolve in the local time zone.
func ResolveDateForYear(def Definition, year int) (time.Time, bool) {
	return Resolve(def, year, time.Local)
}

// ForYear lists every catalog holiday that resolves in year, in catalog order.
func ForYear(year int, loc *time.Location) []Occurrence {
	return forYear(catalog, year, loc)
}

func forYear(defs []Definition, year int, loc *time.Location) []Occurrence {
	out := make([]Occurrence, 0, len(defs))
	for _, def := range defs {
		date, ok := Resolve(def, year, loc)
		if !ok {
			continue
		}
		out = append(out, Occurrence{Holiday: def, Date: date})
	}
	return out
}

// Upcoming lists the holidays of now's year and the following year whose
// date is at or after now, sorted by date. Holidays sharing a date keep
// catalog order.
func Upcoming(now time.Time) []Occurrence {
	return upcoming(catalog, now)
}

func upcoming(defs []Definition, now time.Time) []Occurrence {
	loc := now.Location()
	all := append(forYear(defs, now.Year(), loc), forYear(defs, now.Year()+1, loc)...)

	out := make([]Occurrence, 0, len(all))
	for _, occ := range all {
		if occ.Date.Before(now) {
			continue
		}
		out = append(out, occ)
	}

	slices.SortStableFunc(out, func(a, b Occurrence) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// NextOccurrence returns the date of def in now's year, or in the next
// year if that date is strictly before now. A holiday falling exactly on
// now is still this year's, the same boundary Upcoming uses.
func NextOccurrence(def Definition, now time.Time) (time.Time, bool) {
	date, ok := Resolve(def, now.Year(), now.Location())
	if !ok {
		return time.Time{}, false
	}
	if date.Before(now) {
		return Resolve(def, now.Year()+1, now.Location())
	}
	return date, true
}

// Between lists catalog holidays dated within [from, to], sorted by date.
// Dates are resolved in from's location.
func Between(from, to time.Time) []Occurrence {
	return between(catalog, from, to)
}

func between(defs []Definition, from, to time.Time) []Occurrence {
	if to.Before(from) {
		return nil
	}

	loc := from.Location()
	out := make([]Occurrence, 0)
	for year := from.Year(); year <= to.In(loc).Year(); year++ {
		for _, occ := range forYear(defs, year, loc) {
			if occ.Date.Before(from) || occ.Date.After(to) {
				continue
			}
			out = append(out, occ)
		}
	}

	slices.SortStableFunc(out, func(a, b Occurrence) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

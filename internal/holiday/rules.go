package holiday

import (
	"fmt"
	"time"

	"github.com/rickar/cal/v2"
)

// EasterSunday returns Easter Sunday of the Gregorian calendar for year,
// at midnight in loc. The computation is the anonymous Gregorian computus
// and uses integer arithmetic only; results are valid for year >= 1583.
func EasterSunday(year int, loc *time.Location) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

// NthWeekdayOfMonth returns the nth (1-based) weekday of month in year,
// at midnight in loc.
//
// It panics if n < 1 or if the nth weekday does not exist in that month;
// callers only ask for occurrences that always exist.
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int, loc *time.Location) time.Time {
	if n < 1 {
		panic(fmt.Sprintf("holiday: invalid occurrence index %d", n))
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := 1 + offset + (n-1)*7

	if day > cal.MonthEnd(first).Day() {
		panic(fmt.Sprintf("holiday: %d %s of %s %d overflows the month", n, weekday, month, year))
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if !cal.IsWeekdayN(d, weekday, n) {
		panic(fmt.Sprintf("holiday: %s is not the %d %s of %s", d.Format("2006-01-02"), n, weekday, month))
	}
	return d
}

// fixedDate returns month/day of year at midnight in loc. ok is false when
// the day does not exist in that month, including February 29 outside
// leap years.
func fixedDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	if day > cal.MonthEnd(first).Day() {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc), true
}

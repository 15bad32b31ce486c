package holiday

import (
	"time"

	"github.com/gosimple/slug"
)

// Type classifies a catalog entry. Only TypeHoliday is used today.
type Type string

const (
	TypeHoliday Type = "holiday"
)

// RuleKind identifies which date function resolves a calculated holiday.
type RuleKind int

const (
	RuleEaster RuleKind = iota + 1
	RuleNthWeekday
)

func (k RuleKind) String() string {
	switch k {
	case RuleEaster:
		return "easter"
	case RuleNthWeekday:
		return "nth_weekday"
	default:
		return "unknown"
	}
}

// Rule describes how a calculated holiday is derived for a given year.
// Month, Weekday and N are only meaningful for RuleNthWeekday.
type Rule struct {
	Kind    RuleKind
	Month   time.Month
	Weekday time.Weekday
	N       int
}

// EasterRule resolves to Easter Sunday (Gregorian computus).
func EasterRule() Rule {
	return Rule{Kind: RuleEaster}
}

// NthWeekdayRule resolves to the nth weekday of month, e.g. the 2nd Sunday of May.
func NthWeekdayRule(n int, weekday time.Weekday, month time.Month) Rule {
	return Rule{Kind: RuleNthWeekday, Month: month, Weekday: weekday, N: n}
}

// DateSpec is either a fixed month/day or a calculated Rule.
// Construct it with Fixed or Calculated.
type DateSpec struct {
	calculated bool
	month      time.Month
	day        int
	rule       Rule
}

// Fixed returns a DateSpec that falls on the same month and day every year.
func Fixed(month time.Month, day int) DateSpec {
	return DateSpec{month: month, day: day}
}

// Calculated returns a DateSpec resolved per year by rule.
func Calculated(rule Rule) DateSpec {
	return DateSpec{calculated: true, rule: rule}
}

func (d DateSpec) IsCalculated() bool { return d.calculated }

// MonthDay returns the fixed month and day. ok is false for calculated specs.
func (d DateSpec) MonthDay() (month time.Month, day int, ok bool) {
	if d.calculated {
		return 0, 0, false
	}
	return d.month, d.day, true
}

// Rule returns the rule of a calculated spec. ok is false for fixed specs.
func (d DateSpec) Rule() (Rule, bool) {
	if !d.calculated {
		return Rule{}, false
	}
	return d.rule, true
}

// Definition is an immutable catalog entry.
type Definition struct {
	Name  string
	Emoji string
	Type  Type
	Date  DateSpec
}

// ID is the URL-safe identifier derived from Name (e.g. "mothers-day").
func (d Definition) ID() string {
	return slug.Make(d.Name)
}

// Occurrence is one definition resolved to a concrete date for one year.
type Occurrence struct {
	Holiday Definition
	Date    time.Time
}

// DaysUntil returns the number of days from now until the occurrence,
// rounded up. Occurrences at or before now report 0.
func (o Occurrence) DaysUntil(now time.Time) int {
	d := o.Date.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

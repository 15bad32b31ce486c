package holiday

import (
	"time"

	"github.com/teambition/rrule-go"
)

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Recurrence builds a yearly recurrence for def starting at dtstart.
// Easter follows the lunar calendar and has no RRULE form, so ok is false
// for it, for unknown rules and for fixed dates outside the calendar.
func Recurrence(def Definition, dtstart time.Time) (*rrule.RRule, bool, error) {
	opt := rrule.ROption{
		Freq:    rrule.YEARLY,
		Dtstart: dtstart,
	}

	if month, day, ok := def.Date.MonthDay(); ok {
		if month < time.January || month > time.December || day < 1 || day > 31 {
			return nil, false, nil
		}
		opt.Bymonth = []int{int(month)}
		opt.Bymonthday = []int{day}
	} else {
		rule, _ := def.Date.Rule()
		if rule.Kind != RuleNthWeekday {
			return nil, false, nil
		}
		opt.Bymonth = []int{int(rule.Month)}
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[rule.Weekday].Nth(rule.N)}
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// RRuleString renders the RRULE value (without the "RRULE:" prefix or
// DTSTART line) for def, e.g. "FREQ=YEARLY;BYMONTH=5;BYDAY=+2SU".
func RRuleString(def Definition) (string, bool, error) {
	r, ok, err := Recurrence(def, time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil || !ok {
		return "", ok, err
	}
	return r.OrigOptions.RRuleString(), true, nil
}

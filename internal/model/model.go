package model

import "time"

// Occurrence is the flattened, serialisable view of one holiday on one
// date. The HTTP API, the ICS feed check and the reminder job all work
// on this type rather than on catalog definitions.
type Occurrence struct {
	// UID identifies the holiday series across years (stable per holiday).
	UID string `json:"uid"`

	// InstanceKey uniquely identifies this occurrence, derived from the
	// holiday ID and the local date.
	InstanceKey string `json:"instance_key"`

	HolidayID string `json:"holiday_id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	Type      string `json:"type"`

	AllDay bool `json:"all_day"`

	// Start / End are in the configured display timezone.
	// End is exclusive (next midnight for all-day occurrences).
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	DaysUntil int `json:"days_until"`
}

package holiday

import (
	"time"

	"github.com/google/uuid"

	"couplecal/internal/model"
)

// uidNamespace scopes the name-based UUIDs of holiday series.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://couplecal.app/holidays"))

// UID returns a stable identifier for the holiday series, the same across
// years and processes, so calendar clients de-duplicate feed refreshes.
func (d Definition) UID() string {
	return uuid.NewSHA1(uidNamespace, []byte(d.ID())).String() + "@couplecal"
}

// Model flattens the occurrence for serialisation. now is used for DaysUntil.
func (o Occurrence) Model(now time.Time) model.Occurrence {
	return model.Occurrence{
		UID:         o.Holiday.UID(),
		InstanceKey: o.Holiday.ID() + "/" + o.Date.Format("2006-01-02"),
		HolidayID:   o.Holiday.ID(),
		Name:        o.Holiday.Name,
		Emoji:       o.Holiday.Emoji,
		Type:        string(o.Holiday.Type),
		AllDay:      true,
		Start:       o.Date,
		End:         o.Date.AddDate(0, 0, 1),
		DaysUntil:   o.DaysUntil(now),
	}
}

// Models flattens a list of occurrences.
func Models(occs []Occurrence, now time.Time) []model.Occurrence {
	out := make([]model.Occurrence, 0, len(occs))
	for _, occ := range occs {
		out = append(out, occ.Model(now))
	}
	return out
}

package holiday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccurrenceModel(t *testing.T) {
	def := mustLookup(t, "Halloween")
	occ := Occurrence{Holiday: def, Date: date(2025, time.October, 31)}

	m := occ.Model(date(2025, time.October, 21))
	assert.Equal(t, "halloween", m.HolidayID)
	assert.Equal(t, "halloween/2025-10-31", m.InstanceKey)
	assert.Equal(t, "Halloween", m.Name)
	assert.Equal(t, "🎃", m.Emoji)
	assert.Equal(t, "holiday", m.Type)
	assert.True(t, m.AllDay)
	assert.Equal(t, date(2025, time.November, 1), m.End)
	assert.Equal(t, 10, m.DaysUntil)
}

func TestDefinitionUID(t *testing.T) {
	seen := make(map[string]string)
	for _, def := range Catalog() {
		uid := def.UID()
		require.NotEmpty(t, uid)
		assert.Equal(t, uid, def.UID(), "uid must be stable")
		if other, dup := seen[uid]; dup {
			t.Fatalf("%s and %s share uid %s", def.Name, other, uid)
		}
		seen[uid] = def.Name
	}
}

package holiday

import "time"

// catalog is the fixed list of holidays shown to couples. Order is the
// iteration order of ForYear and the tie-break order of Upcoming.
var catalog = []Definition{
	{Name: "New Year's Day", Emoji: "🎉", Type: TypeHoliday, Date: Fixed(time.January, 1)},
	{Name: "Valentine's Day", Emoji: "💝", Type: TypeHoliday, Date: Fixed(time.February, 14)},
	{Name: "Easter", Emoji: "🐰", Type: TypeHoliday, Date: Calculated(EasterRule())},
	{Name: "Mother's Day", Emoji: "👩", Type: TypeHoliday, Date: Calculated(NthWeekdayRule(2, time.Sunday, time.May))},
	{Name: "Father's Day", Emoji: "👨", Type: TypeHoliday, Date: Calculated(NthWeekdayRule(3, time.Sunday, time.June))},
	{Name: "Halloween", Emoji: "🎃", Type: TypeHoliday, Date: Fixed(time.October, 31)},
	{Name: "Thanksgiving", Emoji: "🦃", Type: TypeHoliday, Date: Calculated(NthWeekdayRule(4, time.Thursday, time.November))},
	{Name: "Christmas Eve", Emoji: "🎄", Type: TypeHoliday, Date: Fixed(time.December, 24)},
	{Name: "Christmas", Emoji: "🎄", Type: TypeHoliday, Date: Fixed(time.December, 25)},
	{Name: "New Year's Eve", Emoji: "🎉", Type: TypeHoliday, Date: Fixed(time.December, 31)},
}

// Catalog returns a copy of the holiday catalog.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog entry by its ID slug or exact name.
func Lookup(key string) (Definition, bool) {
	for _, def := range catalog {
		if def.ID() == key || def.Name == key {
			return def, true
		}
	}
	return Definition{}, false
}

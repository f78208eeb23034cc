package interest

import "time"

// LastDayOfMonth is the posting-day value meaning "last calendar day of the
// month". Stored as NULL in the accounts table.
const LastDayOfMonth = 0

// NextPostingDate returns the date one calendar month after from on which an
// interest charge should land. A postingDay of LastDayOfMonth selects the
// last day of the target month; any other value is clamped to the number of
// days that month actually has, never rolling into the following month.
func NextPostingDate(postingDay int, from time.Time) time.Time {
	year, month, _ := from.Date()
	// time.Date normalizes month overflow, so December+1 lands in January.
	daysInTarget := time.Date(year, month+2, 0, 0, 0, 0, 0, from.Location()).Day()

	day := postingDay
	if day == LastDayOfMonth || day > daysInTarget {
		day = daysInTarget
	}
	return time.Date(year, month+1, day, 0, 0, 0, 0, from.Location())
}

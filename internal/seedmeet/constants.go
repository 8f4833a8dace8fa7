package seedmeet

// Generator constants.
const (
	minAge       = 9
	maxAge       = 17
	minEntries   = 3
	maxEntries   = 12
	maxScore     = 1000
	centisPerSec = 100
)

// Runner constants.
const (
	defaultSwimmers = 200
	maxMismatchLogs = 10
)

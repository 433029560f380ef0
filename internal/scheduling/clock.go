package scheduling

import "time"

// Clock supplies the current instant. Injectable so that cutoff and
// reminder-window logic is testable with a frozen time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

package usecase

import "time"

// Settings carries the mutable fulfillment policy knobs. It is passed
// explicitly into the schedule and reconciliation use cases rather than
// living in ambient global state.
type Settings struct {
	// GraceWindowDays bounds how many days late a delivery event may be
	// reported and still match an unresolved occurrence.
	GraceWindowDays int
	// Now supplies the clock; tests override it.
	Now func() time.Time
}

// NewSettings builds Settings with defaults applied.
func NewSettings(graceWindowDays int) Settings {
	if graceWindowDays < 0 {
		graceWindowDays = 1
	}
	return Settings{GraceWindowDays: graceWindowDays, Now: time.Now}
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

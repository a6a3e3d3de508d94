package model

import "time"

// Holiday is a vendor-declared non-delivery date.
type Holiday struct {
	VendorID int64
	Date     time.Time
	Reason   string
}

// MissedMark is the append-only record that an occurrence elapsed without a
// matching delivery event. Once written it never changes; missed is terminal
// per occurrence.
type MissedMark struct {
	SubscriptionID int64
	Date           time.Time
	MarkedAt       time.Time
}

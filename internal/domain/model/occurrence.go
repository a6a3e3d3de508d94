package model

import "time"

// OccurrenceStatus describes the fulfillment state of one expected delivery.
type OccurrenceStatus string

const (
	OccurrencePending   OccurrenceStatus = "pending"
	OccurrenceDelivered OccurrenceStatus = "delivered"
	OccurrenceMissed    OccurrenceStatus = "missed"
	OccurrenceSkipped   OccurrenceStatus = "skipped"
)

// Occurrence is a single expected delivery derived from a subscription's
// recurrence rule for a specific date. Occurrences are computed, never
// stored; only their resolution (matched event or missed mark) persists.
type Occurrence struct {
	SubscriptionID int64
	Date           time.Time
	Quantity       float64
	Status         OccurrenceStatus
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus describes the reconciliation outcome of a delivery event.
type EventStatus string

const (
	EventMatched    EventStatus = "matched"
	EventUnmatched  EventStatus = "unmatched"
	EventSuperseded EventStatus = "superseded"
)

// Non-delivery reason codes reported by milkmen.
const (
	ReasonCustomerUnavailable = "customer_unavailable"
	ReasonAddressIssue        = "address_issue"
	ReasonVehicleBreakdown    = "vehicle_breakdown"
	ReasonStockShortage       = "stock_shortage"
	ReasonWeather             = "weather_conditions"
	ReasonCustomerCancelled   = "customer_cancelled"
	ReasonQualityIssue        = "quality_issue"
	ReasonOther               = "other"
)

// DeliveryEvent records what a milkman reports for a subscription on a
// date. Events are append-only; a correction is a new event carrying a
// Supersedes reference, never an in-place edit.
type DeliveryEvent struct {
	ID                int64
	ExternalID        uuid.UUID
	MilkmanID         int64
	SubscriptionID    int64
	ServiceDate       time.Time
	Quantity          float64
	Note              string
	NonDeliveryReason string
	Status            EventStatus
	MatchedDate       *time.Time
	Supersedes        *int64
	ReportedAt        time.Time
}

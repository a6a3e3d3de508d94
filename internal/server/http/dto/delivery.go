package dto

import (
	"time"

	"github.com/milkway/milkway/internal/domain/model"
)

// DeliveryRequest is a milkman's report of what happened at the door.
// ExternalID deduplicates retries of the same report.
type DeliveryRequest struct {
	ExternalID        string  `json:"external_id"`
	SubscriptionID    int64   `json:"subscription_id" binding:"required"`
	ServiceDate       string  `json:"service_date" binding:"required"`
	Quantity          float64 `json:"quantity"`
	Note              string  `json:"note,omitempty"`
	NonDeliveryReason string  `json:"non_delivery_reason,omitempty"`
	Supersedes        *int64  `json:"supersedes,omitempty"`
}

// DeliveryResponse is the wire form of a stored delivery event.
type DeliveryResponse struct {
	ID                int64     `json:"id"`
	ExternalID        string    `json:"external_id"`
	MilkmanID         int64     `json:"milkman_id"`
	SubscriptionID    int64     `json:"subscription_id"`
	ServiceDate       string    `json:"service_date"`
	Quantity          float64   `json:"quantity"`
	Note              string    `json:"note,omitempty"`
	NonDeliveryReason string    `json:"non_delivery_reason,omitempty"`
	Status            string    `json:"status"`
	MatchedDate       string    `json:"matched_date,omitempty"`
	Supersedes        *int64    `json:"supersedes,omitempty"`
	ReportedAt        time.Time `json:"reported_at"`
}

// ResolveRequest pins an unmatched event to an occurrence date.
type ResolveRequest struct {
	Date string `json:"date" binding:"required"`
}

// FromDeliveryEvent maps a domain event to its wire form.
func FromDeliveryEvent(ev *model.DeliveryEvent) DeliveryResponse {
	resp := DeliveryResponse{
		ID:                ev.ID,
		ExternalID:        ev.ExternalID.String(),
		MilkmanID:         ev.MilkmanID,
		SubscriptionID:    ev.SubscriptionID,
		ServiceDate:       ev.ServiceDate.Format(time.DateOnly),
		Quantity:          ev.Quantity,
		Note:              ev.Note,
		NonDeliveryReason: ev.NonDeliveryReason,
		Status:            string(ev.Status),
		Supersedes:        ev.Supersedes,
		ReportedAt:        ev.ReportedAt,
	}
	if ev.MatchedDate != nil {
		resp.MatchedDate = ev.MatchedDate.Format(time.DateOnly)
	}
	return resp
}

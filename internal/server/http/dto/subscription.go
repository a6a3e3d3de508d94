package dto

import (
	"time"

	"github.com/milkway/milkway/internal/domain/model"
)

// RecurrenceRuleDTO mirrors model.RecurrenceRule on the wire. Weekdays use
// time.Weekday numbering, 0 for Sunday through 6 for Saturday.
type RecurrenceRuleDTO struct {
	Kind     string `json:"kind" binding:"required"`
	Weekdays []int  `json:"weekdays,omitempty"`
}

// SubscriptionRequest creates a subscription. CustomerID is honored only for
// administrators acting on a customer's behalf.
type SubscriptionRequest struct {
	CustomerID int64             `json:"customer_id,omitempty"`
	VendorID   int64             `json:"vendor_id" binding:"required"`
	Product    string            `json:"product" binding:"required"`
	Quantity   float64           `json:"quantity" binding:"required"`
	Rule       RecurrenceRuleDTO `json:"rule" binding:"required"`
	StartDate  string            `json:"start_date" binding:"required"`
	EndDate    string            `json:"end_date,omitempty"`
}

// PauseRequest suspends deliveries over a closed date range.
type PauseRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// PauseWindowResponse is one suspension range on a subscription.
type PauseWindowResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SubscriptionResponse is the wire form of a subscription.
type SubscriptionResponse struct {
	ID          int64                 `json:"id"`
	CustomerID  int64                 `json:"customer_id"`
	VendorID    int64                 `json:"vendor_id"`
	Product     string                `json:"product"`
	Quantity    float64               `json:"quantity"`
	Rule        RecurrenceRuleDTO     `json:"rule"`
	StartDate   string                `json:"start_date"`
	EndDate     string                `json:"end_date,omitempty"`
	Status      string                `json:"status"`
	Pauses      []PauseWindowResponse `json:"pauses,omitempty"`
	CancelledAt string                `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// OccurrenceResponse is one expected delivery in a schedule window.
type OccurrenceResponse struct {
	SubscriptionID int64   `json:"subscription_id"`
	Date           string  `json:"date"`
	Quantity       float64 `json:"quantity"`
	Status         string  `json:"status"`
}

// ToModelRule converts the wire rule into its domain form.
func (r RecurrenceRuleDTO) ToModelRule() model.RecurrenceRule {
	rule := model.RecurrenceRule{Kind: model.RecurrenceKind(r.Kind)}
	for _, wd := range r.Weekdays {
		rule.Weekdays = append(rule.Weekdays, time.Weekday(wd))
	}
	return rule
}

// FromSubscription maps a domain subscription to its wire form.
func FromSubscription(sub *model.Subscription) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:         sub.ID,
		CustomerID: sub.CustomerID,
		VendorID:   sub.VendorID,
		Product:    sub.Product,
		Quantity:   sub.Quantity,
		Rule:       RecurrenceRuleDTO{Kind: string(sub.Rule.Kind)},
		StartDate:  sub.StartDate.Format(time.DateOnly),
		Status:     string(sub.Status),
		CreatedAt:  sub.CreatedAt,
	}
	for _, wd := range sub.Rule.Weekdays {
		resp.Rule.Weekdays = append(resp.Rule.Weekdays, int(wd))
	}
	if sub.EndDate != nil {
		resp.EndDate = sub.EndDate.Format(time.DateOnly)
	}
	if sub.CancelledAt != nil {
		resp.CancelledAt = sub.CancelledAt.Format(time.DateOnly)
	}
	for _, w := range sub.Pauses {
		resp.Pauses = append(resp.Pauses, PauseWindowResponse{
			From: w.From.Format(time.DateOnly),
			To:   w.To.Format(time.DateOnly),
		})
	}
	return resp
}

// FromOccurrence maps a derived occurrence to its wire form.
func FromOccurrence(occ model.Occurrence) OccurrenceResponse {
	return OccurrenceResponse{
		SubscriptionID: occ.SubscriptionID,
		Date:           occ.Date.Format(time.DateOnly),
		Quantity:       occ.Quantity,
		Status:         string(occ.Status),
	}
}

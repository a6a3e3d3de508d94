package model

import "time"

// SubscriptionStatus describes subscription lifecycle.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionPaused    SubscriptionStatus = "PAUSED"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

// RecurrenceKind names the supported delivery cadences.
type RecurrenceKind string

const (
	RecurDaily     RecurrenceKind = "daily"
	RecurAlternate RecurrenceKind = "alternate"
	RecurWeekly    RecurrenceKind = "weekly"
)

// RecurrenceRule defines which calendar days a subscription is served on.
// Alternate steps two days anchored at the subscription start date; weekly
// requires a non-empty weekday set.
type RecurrenceRule struct {
	Kind     RecurrenceKind
	Weekdays []time.Weekday
}

// Matches reports whether date is a delivery day under the rule, given the
// subscription start date. Both arguments must be normalized with Day.
func (r RecurrenceRule) Matches(start, date time.Time) bool {
	switch r.Kind {
	case RecurDaily:
		return true
	case RecurAlternate:
		days := int(date.Sub(start).Hours() / 24)
		return days%2 == 0
	case RecurWeekly:
		for _, wd := range r.Weekdays {
			if date.Weekday() == wd {
				return true
			}
		}
	}
	return false
}

// PauseWindow is a closed date range during which deliveries are suspended.
type PauseWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether date falls inside the window, bounds inclusive.
func (w PauseWindow) Contains(date time.Time) bool {
	return !date.Before(w.From) && !date.After(w.To)
}

// Subscription is a customer's recurring delivery agreement with a vendor.
type Subscription struct {
	ID          int64
	CustomerID  int64
	VendorID    int64
	Product     string
	Quantity    float64
	Rule        RecurrenceRule
	StartDate   time.Time
	EndDate     *time.Time
	Status      SubscriptionStatus
	Pauses      []PauseWindow
	CancelledAt *time.Time
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PausedOn reports whether deliveries are suspended on the given date.
func (s *Subscription) PausedOn(date time.Time) bool {
	for _, w := range s.Pauses {
		if w.Contains(date) {
			return true
		}
	}
	return false
}

// Day normalizes t to a calendar date at midnight UTC. All schedule
// arithmetic operates on Day-normalized values.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date string into a normalized date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

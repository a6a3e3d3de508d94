package usecase

import (
	"context"
	"time"

	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/domain/repository"
)

// HolidaySet indexes vendor non-delivery dates for O(1) membership tests.
type HolidaySet map[time.Time]struct{}

// NewHolidaySet builds a HolidaySet from holiday records.
func NewHolidaySet(holidays []model.Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set[model.Day(h.Date)] = struct{}{}
	}
	return set
}

// Expand derives the occurrences a subscription implies over [from, to].
// It walks the range in daily steps testing recurrence membership; dates
// falling on vendor holidays or inside pause windows come back skipped,
// the rest pending. Cancellation truncates generation at the cancellation
// date. Expand is pure: regenerating for the same inputs always yields the
// same sequence.
func Expand(sub model.Subscription, from, to time.Time, holidays HolidaySet) []model.Occurrence {
	start := model.Day(sub.StartDate)
	lo := model.Day(from)
	if lo.Before(start) {
		lo = start
	}
	hi := model.Day(to)
	if sub.EndDate != nil && hi.After(model.Day(*sub.EndDate)) {
		hi = model.Day(*sub.EndDate)
	}
	if sub.CancelledAt != nil {
		lastServed := model.Day(*sub.CancelledAt).AddDate(0, 0, -1)
		if hi.After(lastServed) {
			hi = lastServed
		}
	}

	var occurrences []model.Occurrence
	for d := lo; !d.After(hi); d = d.AddDate(0, 0, 1) {
		if !sub.Rule.Matches(start, d) {
			continue
		}
		status := model.OccurrencePending
		if _, holiday := holidays[d]; holiday || sub.PausedOn(d) {
			status = model.OccurrenceSkipped
		}
		occurrences = append(occurrences, model.Occurrence{
			SubscriptionID: sub.ID,
			Date:           d,
			Quantity:       sub.Quantity,
			Status:         status,
		})
	}
	return occurrences
}

// ScheduleUseCase derives occurrence timelines with their resolution state.
type ScheduleUseCase struct {
	subs     repository.SubscriptionRepository
	events   repository.DeliveryEventRepository
	missed   repository.MissedRepository
	calendar repository.CalendarRepository
	settings Settings
}

// NewScheduleUseCase constructs ScheduleUseCase.
func NewScheduleUseCase(
	subs repository.SubscriptionRepository,
	events repository.DeliveryEventRepository,
	missed repository.MissedRepository,
	calendar repository.CalendarRepository,
	settings Settings,
) *ScheduleUseCase {
	return &ScheduleUseCase{subs: subs, events: events, missed: missed, calendar: calendar, settings: settings}
}

// Timeline expands the subscription over [from, to] and overlays matched
// delivery events and missed marks onto the derived occurrences.
func (u *ScheduleUseCase) Timeline(ctx context.Context, subscriptionID int64, from, to time.Time) ([]model.Occurrence, error) {
	sub, err := u.subs.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	holidays, err := u.calendar.Holidays(ctx, sub.VendorID, from, to)
	if err != nil {
		return nil, err
	}

	occurrences := Expand(*sub, from, to, NewHolidaySet(holidays))
	if len(occurrences) == 0 {
		return occurrences, nil
	}

	matched, err := u.events.MatchedDates(ctx, sub.ID, from, to)
	if err != nil {
		return nil, err
	}
	missed, err := u.missed.MissedDates(ctx, sub.ID, from, to)
	if err != nil {
		return nil, err
	}

	matchedSet := dateSet(matched)
	missedSet := dateSet(missed)
	for i := range occurrences {
		if occurrences[i].Status != model.OccurrencePending {
			continue
		}
		if _, ok := matchedSet[occurrences[i].Date]; ok {
			occurrences[i].Status = model.OccurrenceDelivered
			continue
		}
		if _, ok := missedSet[occurrences[i].Date]; ok {
			occurrences[i].Status = model.OccurrenceMissed
		}
	}
	return occurrences, nil
}

func dateSet(dates []time.Time) map[time.Time]struct{} {
	set := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		set[model.Day(d)] = struct{}{}
	}
	return set
}

package usecase

import (
	"context"
	"sort"
	"time"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/domain/repository"
)

// ReportUseCase produces fulfillment summaries. Pure read side: it never
// mutates reconciliation state and tolerates partially reconciled ranges by
// reporting unresolved occurrences as pending rather than missed.
type ReportUseCase struct {
	subs     repository.SubscriptionRepository
	events   repository.DeliveryEventRepository
	missed   repository.MissedRepository
	calendar repository.CalendarRepository
	settings Settings
}

// NewReportUseCase constructs ReportUseCase.
func NewReportUseCase(
	subs repository.SubscriptionRepository,
	events repository.DeliveryEventRepository,
	missed repository.MissedRepository,
	calendar repository.CalendarRepository,
	settings Settings,
) *ReportUseCase {
	return &ReportUseCase{subs: subs, events: events, missed: missed, calendar: calendar, settings: settings}
}

// Summary aggregates occurrence outcomes over [from, to] grouped by the
// requested dimension. Milkman grouping covers delivered events only:
// pending, missed, and skipped occurrences have no milkman until someone
// reports them.
func (u *ReportUseCase) Summary(ctx context.Context, from, to time.Time, group model.ReportGroup) ([]model.ReportRow, error) {
	if !model.ValidReportGroup(group) {
		return nil, domainErrors.ErrInvalidState
	}
	from, to = model.Day(from), model.Day(to)

	matchedEvents, err := u.events.ListMatched(ctx, from, to)
	if err != nil {
		return nil, err
	}

	if group == model.GroupByMilkman {
		return milkmanSummary(matchedEvents), nil
	}

	subs, err := u.subs.ListInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	holidays, err := u.calendar.AllHolidays(ctx, from, to)
	if err != nil {
		return nil, err
	}
	marks, err := u.missed.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	holidaysByVendor := make(map[int64]HolidaySet)
	for _, h := range holidays {
		set, ok := holidaysByVendor[h.VendorID]
		if !ok {
			set = make(HolidaySet)
			holidaysByVendor[h.VendorID] = set
		}
		set[model.Day(h.Date)] = struct{}{}
	}

	deliveredBySub := make(map[int64]map[time.Time]float64)
	for _, ev := range matchedEvents {
		if ev.MatchedDate == nil {
			continue
		}
		bySub, ok := deliveredBySub[ev.SubscriptionID]
		if !ok {
			bySub = make(map[time.Time]float64)
			deliveredBySub[ev.SubscriptionID] = bySub
		}
		bySub[model.Day(*ev.MatchedDate)] = ev.Quantity
	}

	missedBySub := make(map[int64]map[time.Time]struct{})
	for _, m := range marks {
		bySub, ok := missedBySub[m.SubscriptionID]
		if !ok {
			bySub = make(map[time.Time]struct{})
			missedBySub[m.SubscriptionID] = bySub
		}
		bySub[model.Day(m.Date)] = struct{}{}
	}

	rows := make(map[int64]*model.ReportRow)
	for _, sub := range subs {
		key := sub.CustomerID
		if group == model.GroupByVendor {
			key = sub.VendorID
		}
		row, ok := rows[key]
		if !ok {
			row = &model.ReportRow{Key: key}
			rows[key] = row
		}

		delivered := deliveredBySub[sub.ID]
		missed := missedBySub[sub.ID]
		for _, occ := range Expand(sub, from, to, holidaysByVendor[sub.VendorID]) {
			if occ.Status == model.OccurrenceSkipped {
				row.Skipped++
				continue
			}
			row.QuantityExpected += occ.Quantity
			if qty, ok := delivered[occ.Date]; ok {
				row.Delivered++
				row.QuantityDelivered += qty
				continue
			}
			if _, ok := missed[occ.Date]; ok {
				row.Missed++
				continue
			}
			// Not yet reconciled: in-progress today or an elapsed date the
			// sweep has not reached. Either way it is pending, not missed.
			row.Pending++
		}
	}

	return sortRows(rows), nil
}

func milkmanSummary(events []model.DeliveryEvent) []model.ReportRow {
	rows := make(map[int64]*model.ReportRow)
	for _, ev := range events {
		row, ok := rows[ev.MilkmanID]
		if !ok {
			row = &model.ReportRow{Key: ev.MilkmanID}
			rows[ev.MilkmanID] = row
		}
		row.Delivered++
		row.QuantityDelivered += ev.Quantity
	}
	return sortRows(rows)
}

func sortRows(rows map[int64]*model.ReportRow) []model.ReportRow {
	result := make([]model.ReportRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/domain/repository"
)

// Notifier publishes best-effort events to the notification sink.
type Notifier interface {
	Emit(ctx context.Context, n model.Notification)
}

// EventReport is the payload a milkman submits for one delivery.
type EventReport struct {
	ExternalID        uuid.UUID
	SubscriptionID    int64
	ServiceDate       time.Time
	Quantity          float64
	Note              string
	NonDeliveryReason string
	Supersedes        *int64
}

// ReconcileUseCase matches reported delivery events to expected occurrences
// and owns the missed-occurrence sweep. Its logic never retries: every
// operation is idempotent and safe to re-invoke.
type ReconcileUseCase struct {
	subs     repository.SubscriptionRepository
	events   repository.DeliveryEventRepository
	calendar repository.CalendarRepository
	missed   repository.MissedRepository
	audit    repository.AuditRepository
	notifier Notifier
	settings Settings
	logger   *slog.Logger
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(
	subs repository.SubscriptionRepository,
	events repository.DeliveryEventRepository,
	calendar repository.CalendarRepository,
	missed repository.MissedRepository,
	audit repository.AuditRepository,
	notifier Notifier,
	settings Settings,
	logger *slog.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		subs:     subs,
		events:   events,
		calendar: calendar,
		missed:   missed,
		audit:    audit,
		notifier: notifier,
		settings: settings,
		logger:   logger,
	}
}

// Report accepts a milkman's delivery event and matches it to exactly one
// pending occurrence. An exact-date match takes precedence; otherwise the
// earliest unresolved occurrence within the grace window is chosen and the
// tie-break is logged. Events that match nothing are stored unmatched for
// administrator review, never dropped.
func (u *ReconcileUseCase) Report(ctx context.Context, milkmanID int64, report EventReport) (*model.DeliveryEvent, error) {
	if report.Quantity < 0 {
		return nil, domainErrors.ErrInvalidQuantity
	}

	sub, err := u.subs.GetByID(ctx, report.SubscriptionID)
	if err != nil {
		return nil, err
	}

	if report.ExternalID == uuid.Nil {
		report.ExternalID = uuid.New()
	}

	ev := &model.DeliveryEvent{
		ExternalID:        report.ExternalID,
		MilkmanID:         milkmanID,
		SubscriptionID:    sub.ID,
		ServiceDate:       model.Day(report.ServiceDate),
		Quantity:          report.Quantity,
		Note:              report.Note,
		NonDeliveryReason: report.NonDeliveryReason,
		Supersedes:        report.Supersedes,
	}

	target, err := u.findOccurrence(ctx, sub, ev.ServiceDate)
	if err != nil {
		return nil, err
	}
	if target == nil {
		ev.Status = model.EventUnmatched
		stored, err := u.events.Insert(ctx, ev)
		if err != nil {
			return nil, err
		}
		return stored, domainErrors.ErrUnmatchedEvent
	}

	ev.Status = model.EventMatched
	ev.MatchedDate = target
	stored, err := u.events.Insert(ctx, ev)
	if err != nil {
		if errors.Is(err, domainErrors.ErrConflict) {
			u.recordConflict(ctx, ev)
			return nil, domainErrors.ErrConflict
		}
		return nil, err
	}

	if !target.Equal(ev.ServiceDate) {
		u.logger.Info("grace-window match",
			slog.Int64("subscription", sub.ID),
			slog.String("event_date", ev.ServiceDate.Format(time.DateOnly)),
			slog.String("occurrence_date", target.Format(time.DateOnly)),
		)
	}

	u.appendAudit(ctx, &model.AuditEntry{
		Actor:          fmt.Sprintf("milkman:%d", milkmanID),
		Action:         model.AuditResolve,
		SubscriptionID: sub.ID,
		OccurrenceDate: target,
		EventID:        &stored.ID,
	})
	return stored, nil
}

// findOccurrence locates the occurrence date the event should resolve, or
// nil when nothing within the grace window is unresolved.
func (u *ReconcileUseCase) findOccurrence(ctx context.Context, sub *model.Subscription, eventDate time.Time) (*time.Time, error) {
	lo := eventDate.AddDate(0, 0, -u.settings.GraceWindowDays)

	holidays, err := u.calendar.Holidays(ctx, sub.VendorID, lo, eventDate)
	if err != nil {
		return nil, err
	}
	matched, err := u.events.MatchedDates(ctx, sub.ID, lo, eventDate)
	if err != nil {
		return nil, err
	}
	missedDates, err := u.missed.MissedDates(ctx, sub.ID, lo, eventDate)
	if err != nil {
		return nil, err
	}

	resolved := dateSet(matched)
	for d := range dateSet(missedDates) {
		resolved[d] = struct{}{}
	}

	var candidates []time.Time
	for _, occ := range Expand(*sub, lo, eventDate, NewHolidaySet(holidays)) {
		if occ.Status != model.OccurrencePending {
			continue
		}
		if _, done := resolved[occ.Date]; done {
			continue
		}
		candidates = append(candidates, occ.Date)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Exact date first, then FIFO: the earliest unresolved occurrence.
	for _, d := range candidates {
		if d.Equal(eventDate) {
			return &d, nil
		}
	}
	if len(candidates) > 1 {
		u.logger.Info("ambiguous reconciliation, earliest occurrence chosen",
			slog.Int64("subscription", sub.ID),
			slog.Int("candidates", len(candidates)),
		)
	}
	earliest := candidates[0]
	return &earliest, nil
}

// recordConflict stores the losing event for manual reconciliation and
// emits a ConflictDetected notification.
func (u *ReconcileUseCase) recordConflict(ctx context.Context, ev *model.DeliveryEvent) {
	date := *ev.MatchedDate
	loser := *ev
	loser.Status = model.EventUnmatched
	loser.MatchedDate = nil
	if _, err := u.events.Insert(ctx, &loser); err != nil && !errors.Is(err, domainErrors.ErrAlreadyExists) {
		u.logger.Error("record conflicting event failed",
			slog.Int64("subscription", ev.SubscriptionID),
			slog.String("error", err.Error()),
		)
	}
	u.emit(model.Notification{
		Type:           model.NotifyConflictDetected,
		SubscriptionID: ev.SubscriptionID,
		Date:           date,
		Detail:         fmt.Sprintf("duplicate resolution attempt by milkman %d", ev.MilkmanID),
	})
}

// Deliveries returns the events a milkman has reported, newest first.
func (u *ReconcileUseCase) Deliveries(ctx context.Context, milkmanID int64) ([]model.DeliveryEvent, error) {
	return u.events.ListByMilkman(ctx, milkmanID)
}

// Unmatched returns events awaiting manual reconciliation.
func (u *ReconcileUseCase) Unmatched(ctx context.Context) ([]model.DeliveryEvent, error) {
	return u.events.ListUnmatched(ctx)
}

// ForceResolve lets an administrator attach an unmatched event to an
// occurrence date. The single-writer discipline still applies.
func (u *ReconcileUseCase) ForceResolve(ctx context.Context, adminID, eventID int64, date time.Time) error {
	ev, err := u.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.Status != model.EventUnmatched {
		return domainErrors.ErrInvalidState
	}

	date = model.Day(date)
	if err := u.events.Resolve(ctx, eventID, date); err != nil {
		return err
	}

	u.appendAudit(ctx, &model.AuditEntry{
		Actor:          fmt.Sprintf("admin:%d", adminID),
		Action:         model.AuditForceResolve,
		SubscriptionID: ev.SubscriptionID,
		OccurrenceDate: &date,
		EventID:        &eventID,
	})
	return nil
}

// Sweep marks elapsed pending occurrences of the subscription as missed
// over [from, to]. Re-running the sweep never changes an occurrence that is
// already missed. Returns how many occurrences were newly marked.
func (u *ReconcileUseCase) Sweep(ctx context.Context, sub model.Subscription, from, to time.Time) (int, error) {
	holidays, err := u.calendar.Holidays(ctx, sub.VendorID, from, to)
	if err != nil {
		return 0, err
	}
	matched, err := u.events.MatchedDates(ctx, sub.ID, from, to)
	if err != nil {
		return 0, err
	}

	matchedSet := dateSet(matched)
	marked := 0
	for _, occ := range Expand(sub, from, to, NewHolidaySet(holidays)) {
		if occ.Status != model.OccurrencePending {
			continue
		}
		if _, ok := matchedSet[occ.Date]; ok {
			continue
		}
		fresh, err := u.missed.Mark(ctx, sub.ID, occ.Date)
		if err != nil {
			return marked, err
		}
		if !fresh {
			continue
		}
		marked++
		date := occ.Date
		u.appendAudit(ctx, &model.AuditEntry{
			Actor:          "sweep",
			Action:         model.AuditSweepMissed,
			SubscriptionID: sub.ID,
			OccurrenceDate: &date,
		})
		u.emit(model.Notification{
			Type:           model.NotifyOccurrenceMissed,
			SubscriptionID: sub.ID,
			Date:           occ.Date,
		})
	}
	return marked, nil
}

// SubscriptionsForSweep claims a batch of subscriptions due for sweeping.
func (u *ReconcileUseCase) SubscriptionsForSweep(ctx context.Context, sweptBefore time.Time, limit int) ([]model.Subscription, error) {
	return u.subs.SelectBatchForSweep(ctx, sweptBefore, limit)
}

func (u *ReconcileUseCase) appendAudit(ctx context.Context, entry *model.AuditEntry) {
	if err := u.audit.Append(ctx, entry); err != nil {
		u.logger.Error("append audit entry failed",
			slog.Int64("subscription", entry.SubscriptionID),
			slog.String("action", entry.Action),
			slog.String("error", err.Error()),
		)
	}
}

// emit dispatches fire-and-forget: notification delivery never blocks or
// fails a reconciliation.
func (u *ReconcileUseCase) emit(n model.Notification) {
	if u.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		u.notifier.Emit(ctx, n)
	}()
}

package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
	testhelpers "github.com/milkway/milkway/internal/test"
	"github.com/milkway/milkway/internal/usecase"
)

type reconcileFixture struct {
	uc       *usecase.ReconcileUseCase
	subs     *testhelpers.SubscriptionRepositoryStub
	events   *testhelpers.EventRepositoryStub
	calendar *testhelpers.CalendarRepositoryStub
	missed   *testhelpers.MissedRepositoryStub
	audit    *testhelpers.AuditRepositoryStub
	notifier *testhelpers.NotifierStub
}

func newReconcileFixture(now time.Time) *reconcileFixture {
	f := &reconcileFixture{
		subs:     testhelpers.NewSubscriptionRepositoryStub(),
		events:   testhelpers.NewEventRepositoryStub(),
		calendar: &testhelpers.CalendarRepositoryStub{},
		missed:   testhelpers.NewMissedRepositoryStub(),
		audit:    &testhelpers.AuditRepositoryStub{},
		notifier: &testhelpers.NotifierStub{},
	}
	f.uc = usecase.NewReconcileUseCase(
		f.subs, f.events, f.calendar, f.missed, f.audit, f.notifier,
		fixedSettings(now),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

// eventually polls until cond holds; asynchronous notification dispatch
// needs a grace period before asserting.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestReportExactMatch(t *testing.T) {
	f := newReconcileFixture(date(2025, time.March, 5))
	sub := f.subs.Add(mwfSubscription())

	ev, err := f.uc.Report(context.Background(), 3, usecase.EventReport{
		SubscriptionID: sub.ID,
		ServiceDate:    date(2025, time.March, 5),
		Quantity:       1.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Status != model.EventMatched {
		t.Fatalf("expected matched event, got %s", ev.Status)
	}
	if ev.MatchedDate == nil || !ev.MatchedDate.Equal(date(2025, time.March, 5)) {
		t.Fatalf("expected match on service date, got %v", ev.MatchedDate)
	}
	if ev.ExternalID == uuid.Nil {
		t.Fatal("expected generated external id")
	}

	entries := f.audit.All()
	if len(entries) != 1 || entries[0].Action != model.AuditResolve {
		t.Fatalf("expected one resolve audit entry, got %+v", entries)
	}
}

func TestReportGraceMatch(t *testing.T) {
	f := newReconcileFixture(date(2025, time.March, 6))
	sub := f.subs.Add(mwfSubscription())

	// Wednesday the 5th was not served; the report arrives Thursday the
	// 6th, one day late and inside the grace window.
	ev, err := f.uc.Report(context.Background(), 3, usecase.EventReport{
		SubscriptionID: sub.ID,
		ServiceDate:    date(2025, time.March, 6),
		Quantity:       1.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.MatchedDate == nil || !ev.MatchedDate.Equal(date(2025, time.March, 5)) {
		t.Fatalf("expected grace match to the 5th, got %v", ev.MatchedDate)
	}
}

func TestReportBeyondGraceUnmatched(t *testing.T) {
	f := newReconcileFixture(date(2025, time.March, 8))
	sub := f.subs.Add(mwfSubscription())

	// Saturday the 8th has no occurrence and the 7th is outside a
	// one-day grace window only if already resolved; resolve it first.
	if _, err := f.uc.Report(context.Background(), 3, usecase.EventReport{
		SubscriptionID: sub.ID,
		ServiceDate:    date(2025, time.March, 7),
		Quantity:       1.5,
	}); err != nil {
		t.Fatalf("seed report: %v", err)
	}

	ev, err := f.uc.Report(context.Background(), 3, usecase.EventReport{
		SubscriptionID: sub.ID,
		ServiceDate:    date(2025, time.March, 8),
		Quantity:       1.5,
	})
	if !errors.Is(err, domainErrors.ErrUnmatchedEvent) {
		t.Fatalf("expected ErrUnmatchedEvent, got %v", err)
	}
	if ev == nil || ev.Status != model.EventUnmatched {
		t.Fatalf("unmatched event must still be stored, got %+v", ev)
	}

	queue, err := f.uc.Unmatched(context.Background())
	if err != nil {
		t.Fatalf("unmatched: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("expected one queued event, got %d", len(queue))
	}
}

func TestReportMissedOccurrenceIsTerminal(t *testing.T) {
	f := newReconcileFixture(date(2025, time.March, 6))
	sub := f.subs.Add(mwfSubscription())

	if _, err := f.missed.Mark(context.Background(), sub.ID, date(2025, time.March, 5)); err != nil {
		t.Fatalf("seed missed mark: %v", err)
	}

	// The only candidate in the window is already missed, so the late
	// report lands in the unmatched queue rather than flipping it.
	_, err := f.uc.Report(context.Background(), 3, usecase.EventReport{
		SubscriptionID: sub.ID,
		ServiceDate:    date(2025, time.March, 6),
		Quantity:       1.5,
	})
	if !errors.Is(err, domainErrors.ErrUnmatchedEvent) {
		t.Fatalf("expected ErrUnmatchedEvent, got %v", err)
	}
}

func TestReportConcurrentDuplicates(t *testing.T) {
	f := newReconcileFixture(date(2025, time.March, 5))
	sub := f.subs.Add(mwfSubscription())

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.uc.Report(context.Background(), int64(3+i), usecase.EventReport{
				ExternalID:     uuid.New(),
				SubscriptionID: sub.ID,
				ServiceDate:    date(2025, time.March, 5),
				Quantity:       1.5,
			})
		}(i)
	}
	wg.Wait()

	// The loser either raced the insert (ErrConflict) or observed the
	// winner's match before inserting (ErrUnmatchedEvent). Both outcomes
	// preserve single-writer semantics and queue the event for review.
	var ok, rejected, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domainErrors.ErrConflict):
			rejected++
			conflicts++
		case errors.Is(err, domainErrors.ErrUnmatchedEvent):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || rejected != 1 {
		t.Fatalf("expected exactly one winner, got ok=%d rejected=%d", ok, rejected)
	}

	if conflicts == 1 {
		eventually(t, func() bool {
			for _, n := range f.notifier.Emitted() {
				if n.Type == model.NotifyConflictDetected {
					return true
				}
			}
			return false
		})
	}

	queue, err := f.uc.Unmatched(context.Background())
	if err != nil {
		t.Fatalf("unmatched: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("losing event must be stored for review, got %d queued", len(queue))
	}
}

func TestReportDuplicateExternalID(t *testing.T) {
	f := newReconcileFixture(date(2025, time.March, 5))
	sub := f.subs.Add(mwfSubscription())
	id := uuid.New()

	if _, err := f.uc.Report(context.Background(), 3, usecase.EventReport{
		ExternalID:     id,
		SubscriptionID: sub.ID,
		ServiceDate:    date(2025, time.March, 5),
		Quantity:       1.5,
	}); err != nil {
		t.Fatalf("first report: %v", err)
	}
	if _, err := f.uc.Report(context.Background(), 3, usecase.EventReport{
		ExternalID:     id,
		SubscriptionID: sub.ID,
		ServiceDate:    date(2025, time.March, 5),
		Quantity:       1.5,
	}); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for replayed external id, got %v", err)
	}
}

func TestReportNegativeQuantity(t *testing.T) {
	f := newReconcileFixture(date(2025, time.March, 5))
	sub := f.subs.Add(mwfSubscription())

	if _, err := f.uc.Report(context.Background(), 3, usecase.EventReport{
		SubscriptionID: sub.ID,
		ServiceDate:    date(2025, time.March, 5),
		Quantity:       -1,
	}); !errors.Is(err, domainErrors.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestSweepMarksMissedOnce(t *testing.T) {
	f := newReconcileFixture(date(2025, time.March, 8))
	sub := f.subs.Add(mwfSubscription())

	// Monday the 3rd was delivered; Wednesday the 5th and Friday the
	// 7th were not.
	if _, err := f.uc.Report(context.Background(), 3, usecase.EventReport{
		SubscriptionID: sub.ID,
		ServiceDate:    date(2025, time.March, 3),
		Quantity:       1.5,
	}); err != nil {
		t.Fatalf("seed report: %v", err)
	}

	marked, err := f.uc.Sweep(context.Background(), *sub, date(2025, time.March, 3), date(2025, time.March, 7))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 newly missed occurrences, got %d", marked)
	}

	eventually(t, func() bool {
		missedNotes := 0
		for _, n := range f.notifier.Emitted() {
			if n.Type == model.NotifyOccurrenceMissed {
				missedNotes++
			}
		}
		return missedNotes == 2
	})

	again, err := f.uc.Sweep(context.Background(), *sub, date(2025, time.March, 3), date(2025, time.March, 7))
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if again != 0 {
		t.Fatalf("sweep must be idempotent, got %d new marks", again)
	}
}

func TestSweepSkipsHolidaysAndPauses(t *testing.T) {
	f := newReconcileFixture(date(2025, time.March, 8))
	seed := mwfSubscription()
	seed.Pauses = []model.PauseWindow{{From: date(2025, time.March, 7), To: date(2025, time.March, 7)}}
	sub := f.subs.Add(seed)
	if err := f.calendar.AddHoliday(context.Background(), model.Holiday{VendorID: sub.VendorID, Date: date(2025, time.March, 5)}); err != nil {
		t.Fatalf("seed holiday: %v", err)
	}

	marked, err := f.uc.Sweep(context.Background(), *sub, date(2025, time.March, 3), date(2025, time.March, 7))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if marked != 1 {
		t.Fatalf("only Monday the 3rd should be marked, got %d", marked)
	}
}

func TestForceResolve(t *testing.T) {
	f := newReconcileFixture(date(2025, time.March, 8))
	sub := f.subs.Add(mwfSubscription())

	stored, err := f.events.Insert(context.Background(), &model.DeliveryEvent{
		ExternalID:     uuid.New(),
		MilkmanID:      3,
		SubscriptionID: sub.ID,
		ServiceDate:    date(2025, time.March, 8),
		Quantity:       1.5,
		Status:         model.EventUnmatched,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}

	if err := f.uc.ForceResolve(context.Background(), 1, stored.ID, date(2025, time.March, 7)); err != nil {
		t.Fatalf("force resolve: %v", err)
	}

	resolved, err := f.events.GetByID(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if resolved.Status != model.EventMatched {
		t.Fatalf("expected matched status, got %s", resolved.Status)
	}
	if resolved.MatchedDate == nil || !resolved.MatchedDate.Equal(date(2025, time.March, 7)) {
		t.Fatalf("expected match on the 7th, got %v", resolved.MatchedDate)
	}

	// A second force-resolve hits an already matched event.
	if err := f.uc.ForceResolve(context.Background(), 1, stored.ID, date(2025, time.March, 7)); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	entries := f.audit.All()
	if len(entries) != 1 || entries[0].Action != model.AuditForceResolve {
		t.Fatalf("expected one force-resolve audit entry, got %+v", entries)
	}
}

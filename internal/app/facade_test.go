package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
	testhelpers "github.com/milkway/milkway/internal/test"
	"github.com/milkway/milkway/internal/usecase"
)

type facadeFixture struct {
	facade *FulfillmentFacade
	subs   *testhelpers.SubscriptionRepositoryStub
	events *testhelpers.EventRepositoryStub
	users  *testhelpers.UserRepositoryStub
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newFacadeFixture(now time.Time) *facadeFixture {
	users := testhelpers.NewUserRepositoryStub()
	subs := testhelpers.NewSubscriptionRepositoryStub()
	events := testhelpers.NewEventRepositoryStub()
	calendar := &testhelpers.CalendarRepositoryStub{}
	missed := testhelpers.NewMissedRepositoryStub()
	audit := &testhelpers.AuditRepositoryStub{}
	notifier := &testhelpers.NotifierStub{}
	settings := usecase.Settings{GraceWindowDays: 1, Now: func() time.Time { return now }}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	auth := usecase.NewAuthUseCase(users, testhelpers.HasherStub{}, testhelpers.StrategyStub{})
	subscriptions := usecase.NewSubscriptionUseCase(subs, settings)
	schedule := usecase.NewScheduleUseCase(subs, events, missed, calendar, settings)
	reconcile := usecase.NewReconcileUseCase(subs, events, calendar, missed, audit, notifier, settings, logger)
	reports := usecase.NewReportUseCase(subs, events, missed, calendar, settings)
	calendarUC := usecase.NewCalendarUseCase(calendar)

	return &facadeFixture{
		facade: NewFulfillmentFacade(auth, subscriptions, schedule, reconcile, reports, calendarUC),
		subs:   subs,
		events: events,
		users:  users,
	}
}

func seedSubscription(f *facadeFixture) *model.Subscription {
	return f.subs.Add(model.Subscription{
		CustomerID: 10,
		VendorID:   20,
		Product:    "cow-milk",
		Quantity:   1.5,
		Rule:       model.RecurrenceRule{Kind: model.RecurDaily},
		StartDate:  date(2025, time.March, 1),
		Status:     model.SubscriptionActive,
	})
}

var (
	customer = model.Identity{UserID: 10, Role: model.RoleCustomer}
	stranger = model.Identity{UserID: 99, Role: model.RoleCustomer}
	vendor   = model.Identity{UserID: 20, Role: model.RoleVendor}
	milkman  = model.Identity{UserID: 3, Role: model.RoleMilkman}
	admin    = model.Identity{UserID: 1, Role: model.RoleAdmin}
)

func TestCreateSubscriptionRoles(t *testing.T) {
	f := newFacadeFixture(date(2025, time.March, 1))

	sub := &model.Subscription{
		VendorID:  20,
		Product:   "cow-milk",
		Quantity:  1,
		Rule:      model.RecurrenceRule{Kind: model.RecurDaily},
		StartDate: date(2025, time.March, 3),
	}
	created, err := f.facade.CreateSubscription(context.Background(), customer, sub)
	if err != nil {
		t.Fatalf("customer create: %v", err)
	}
	if created.CustomerID != customer.UserID {
		t.Fatalf("subscription must belong to the caller, got %d", created.CustomerID)
	}

	if _, err := f.facade.CreateSubscription(context.Background(), milkman, sub); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("milkman create: expected ErrPermissionDenied, got %v", err)
	}
	if _, err := f.facade.CreateSubscription(context.Background(), vendor, sub); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("vendor create: expected ErrPermissionDenied, got %v", err)
	}

	onBehalf := *sub
	onBehalf.CustomerID = 42
	created, err = f.facade.CreateSubscription(context.Background(), admin, &onBehalf)
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if created.CustomerID != 42 {
		t.Fatalf("admin create must keep the named customer, got %d", created.CustomerID)
	}
}

func TestSubscriptionsVisibility(t *testing.T) {
	f := newFacadeFixture(date(2025, time.March, 1))
	seedSubscription(f)

	own, err := f.facade.Subscriptions(context.Background(), customer)
	if err != nil || len(own) != 1 {
		t.Fatalf("customer list: %v, %d subscriptions", err, len(own))
	}

	served, err := f.facade.Subscriptions(context.Background(), vendor)
	if err != nil || len(served) != 1 {
		t.Fatalf("vendor list: %v, %d subscriptions", err, len(served))
	}

	none, err := f.facade.Subscriptions(context.Background(), stranger)
	if err != nil || len(none) != 0 {
		t.Fatalf("stranger list: %v, %d subscriptions", err, len(none))
	}

	all, err := f.facade.Subscriptions(context.Background(), admin)
	if err != nil || len(all) != 1 {
		t.Fatalf("admin list: %v, %d subscriptions", err, len(all))
	}

	if _, err := f.facade.Subscriptions(context.Background(), milkman); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("milkman list: expected ErrPermissionDenied, got %v", err)
	}
}

func TestScheduleOwnership(t *testing.T) {
	f := newFacadeFixture(date(2025, time.March, 1))
	sub := seedSubscription(f)
	from, to := date(2025, time.March, 3), date(2025, time.March, 5)

	if _, err := f.facade.Schedule(context.Background(), customer, sub.ID, from, to); err != nil {
		t.Fatalf("owner schedule: %v", err)
	}
	if _, err := f.facade.Schedule(context.Background(), vendor, sub.ID, from, to); err != nil {
		t.Fatalf("vendor schedule: %v", err)
	}
	if _, err := f.facade.Schedule(context.Background(), milkman, sub.ID, from, to); err != nil {
		t.Fatalf("milkman schedule: %v", err)
	}
	if _, err := f.facade.Schedule(context.Background(), stranger, sub.ID, from, to); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("stranger schedule: expected ErrPermissionDenied, got %v", err)
	}
	if _, err := f.facade.Schedule(context.Background(), customer, 404, from, to); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("missing subscription: expected ErrNotFound, got %v", err)
	}
}

func TestLifecycleOwnership(t *testing.T) {
	f := newFacadeFixture(date(2025, time.March, 10))
	sub := seedSubscription(f)
	from, to := date(2025, time.March, 12), date(2025, time.March, 14)

	if _, err := f.facade.PauseSubscription(context.Background(), vendor, sub.ID, from, to); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("vendor pause: expected ErrPermissionDenied, got %v", err)
	}
	if _, err := f.facade.PauseSubscription(context.Background(), stranger, sub.ID, from, to); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("stranger pause: expected ErrPermissionDenied, got %v", err)
	}

	paused, err := f.facade.PauseSubscription(context.Background(), customer, sub.ID, from, to)
	if err != nil {
		t.Fatalf("owner pause: %v", err)
	}
	if paused.Status != model.SubscriptionPaused {
		t.Fatalf("expected paused, got %s", paused.Status)
	}

	if _, err := f.facade.ResumeSubscription(context.Background(), customer, sub.ID); err != nil {
		t.Fatalf("owner resume: %v", err)
	}
	if _, err := f.facade.CancelSubscription(context.Background(), admin, sub.ID); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}

func TestReportDeliveryRoles(t *testing.T) {
	f := newFacadeFixture(date(2025, time.March, 5))
	sub := seedSubscription(f)

	report := usecase.EventReport{SubscriptionID: sub.ID, ServiceDate: date(2025, time.March, 5), Quantity: 1.5}
	if _, err := f.facade.ReportDelivery(context.Background(), customer, report); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("customer report: expected ErrPermissionDenied, got %v", err)
	}

	ev, err := f.facade.ReportDelivery(context.Background(), milkman, report)
	if err != nil {
		t.Fatalf("milkman report: %v", err)
	}
	if ev.MilkmanID != milkman.UserID {
		t.Fatalf("event must carry the reporting milkman, got %d", ev.MilkmanID)
	}

	own, err := f.facade.Deliveries(context.Background(), milkman)
	if err != nil || len(own) != 1 {
		t.Fatalf("milkman deliveries: %v, %d events", err, len(own))
	}
	if _, err := f.facade.Deliveries(context.Background(), customer); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("customer deliveries: expected ErrPermissionDenied, got %v", err)
	}
}

func TestCalendarRoles(t *testing.T) {
	f := newFacadeFixture(date(2025, time.March, 1))
	day := date(2025, time.March, 8)

	if err := f.facade.AddHoliday(context.Background(), customer, 20, day, ""); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("customer add holiday: expected ErrPermissionDenied, got %v", err)
	}

	// A vendor always works on its own calendar, whatever id the payload names.
	if err := f.facade.AddHoliday(context.Background(), vendor, 999, day, "festival"); err != nil {
		t.Fatalf("vendor add holiday: %v", err)
	}
	holidays, err := f.facade.Holidays(context.Background(), vendor, 0, day, day)
	if err != nil || len(holidays) != 1 {
		t.Fatalf("vendor holidays: %v, %d entries", err, len(holidays))
	}
	if holidays[0].VendorID != vendor.UserID {
		t.Fatalf("holiday must land on the vendor's calendar, got %d", holidays[0].VendorID)
	}

	if err := f.facade.AddHoliday(context.Background(), admin, 0, day, ""); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("admin without vendor id: expected ErrInvalidState, got %v", err)
	}
	if err := f.facade.RemoveHoliday(context.Background(), admin, vendor.UserID, day); err != nil {
		t.Fatalf("admin remove holiday: %v", err)
	}
}

func TestSummaryRoles(t *testing.T) {
	f := newFacadeFixture(date(2025, time.March, 7))
	sub := seedSubscription(f)
	matched := date(2025, time.March, 3)
	if _, err := f.events.Insert(context.Background(), &model.DeliveryEvent{
		SubscriptionID: sub.ID,
		MilkmanID:      3,
		ServiceDate:    matched,
		Quantity:       1.5,
		Status:         model.EventMatched,
		MatchedDate:    &matched,
	}); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	if _, err := f.facade.FulfillmentSummary(context.Background(), customer, matched, matched, model.GroupByCustomer); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("customer summary: expected ErrPermissionDenied, got %v", err)
	}
	if _, err := f.facade.FulfillmentSummary(context.Background(), vendor, matched, matched, model.GroupByCustomer); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("vendor cross-group summary: expected ErrPermissionDenied, got %v", err)
	}

	rows, err := f.facade.FulfillmentSummary(context.Background(), vendor, matched, matched, model.GroupByVendor)
	if err != nil {
		t.Fatalf("vendor summary: %v", err)
	}
	if len(rows) != 1 || rows[0].Key != vendor.UserID {
		t.Fatalf("vendor must see only its own row, got %+v", rows)
	}

	if _, err := f.facade.FulfillmentSummary(context.Background(), admin, matched, matched, model.GroupByMilkman); err != nil {
		t.Fatalf("admin summary: %v", err)
	}
}

func TestAdminQueueRoles(t *testing.T) {
	f := newFacadeFixture(date(2025, time.March, 8))
	sub := seedSubscription(f)

	stored, err := f.events.Insert(context.Background(), &model.DeliveryEvent{
		SubscriptionID: sub.ID,
		MilkmanID:      3,
		ServiceDate:    date(2025, time.March, 8),
		Quantity:       1.5,
		Status:         model.EventUnmatched,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}

	if _, err := f.facade.UnmatchedEvents(context.Background(), vendor); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("vendor unmatched: expected ErrPermissionDenied, got %v", err)
	}
	queue, err := f.facade.UnmatchedEvents(context.Background(), admin)
	if err != nil || len(queue) != 1 {
		t.Fatalf("admin unmatched: %v, %d events", err, len(queue))
	}

	if err := f.facade.ForceResolve(context.Background(), milkman, stored.ID, date(2025, time.March, 7)); !errors.Is(err, domainErrors.ErrPermissionDenied) {
		t.Fatalf("milkman force-resolve: expected ErrPermissionDenied, got %v", err)
	}
	if err := f.facade.ForceResolve(context.Background(), admin, stored.ID, date(2025, time.March, 7)); err != nil {
		t.Fatalf("admin force-resolve: %v", err)
	}
}

func TestSweepPassthrough(t *testing.T) {
	f := newFacadeFixture(date(2025, time.March, 8))
	sub := seedSubscription(f)
	f.subs.SweepBatch = []model.Subscription{*sub}

	batch, err := f.facade.SubscriptionsForSweep(context.Background(), time.Now(), 10)
	if err != nil || len(batch) != 1 {
		t.Fatalf("sweep batch: %v, %d subscriptions", err, len(batch))
	}

	marked, err := f.facade.SweepSubscription(context.Background(), *sub, date(2025, time.March, 3), date(2025, time.March, 7))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if marked != 5 {
		t.Fatalf("daily rule over five days must mark five, got %d", marked)
	}
}

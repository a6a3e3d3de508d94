package test

import (
	"context"
	"sync"
	"time"

	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/usecase"
)

// AuthFacadeStub emulates authentication behaviour for handler tests.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string, model.Role) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseFn        func(string) (model.Identity, error)
}

func (s AuthFacadeStub) Register(ctx context.Context, login, password string, role model.Role) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password, role)
	}
	return "token", nil
}

func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

func (s AuthFacadeStub) ParseToken(token string) (model.Identity, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return model.Identity{UserID: 1, Role: model.RoleCustomer}, nil
}

// SubscriptionFacadeStub provides controllable behaviour for subscription
// endpoints.
type SubscriptionFacadeStub struct {
	CreateFn   func(context.Context, model.Identity, *model.Subscription) (*model.Subscription, error)
	ListFn     func(context.Context, model.Identity) ([]model.Subscription, error)
	ScheduleFn func(context.Context, model.Identity, int64, time.Time, time.Time) ([]model.Occurrence, error)
	PauseFn    func(context.Context, model.Identity, int64, time.Time, time.Time) (*model.Subscription, error)
	ResumeFn   func(context.Context, model.Identity, int64) (*model.Subscription, error)
	CancelFn   func(context.Context, model.Identity, int64) (*model.Subscription, error)
}

func (s SubscriptionFacadeStub) CreateSubscription(ctx context.Context, ident model.Identity, sub *model.Subscription) (*model.Subscription, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, ident, sub)
	}
	created := *sub
	created.ID = 1
	created.Status = model.SubscriptionActive
	return &created, nil
}

func (s SubscriptionFacadeStub) Subscriptions(ctx context.Context, ident model.Identity) ([]model.Subscription, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, ident)
	}
	return []model.Subscription{{ID: 1, CustomerID: ident.UserID}}, nil
}

func (s SubscriptionFacadeStub) Schedule(ctx context.Context, ident model.Identity, id int64, from, to time.Time) ([]model.Occurrence, error) {
	if s.ScheduleFn != nil {
		return s.ScheduleFn(ctx, ident, id, from, to)
	}
	return []model.Occurrence{{SubscriptionID: id, Date: from, Status: model.OccurrencePending}}, nil
}

func (s SubscriptionFacadeStub) PauseSubscription(ctx context.Context, ident model.Identity, id int64, from, to time.Time) (*model.Subscription, error) {
	if s.PauseFn != nil {
		return s.PauseFn(ctx, ident, id, from, to)
	}
	return &model.Subscription{ID: id, Status: model.SubscriptionPaused}, nil
}

func (s SubscriptionFacadeStub) ResumeSubscription(ctx context.Context, ident model.Identity, id int64) (*model.Subscription, error) {
	if s.ResumeFn != nil {
		return s.ResumeFn(ctx, ident, id)
	}
	return &model.Subscription{ID: id, Status: model.SubscriptionActive}, nil
}

func (s SubscriptionFacadeStub) CancelSubscription(ctx context.Context, ident model.Identity, id int64) (*model.Subscription, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, ident, id)
	}
	return &model.Subscription{ID: id, Status: model.SubscriptionCancelled}, nil
}

// DeliveryFacadeStub simulates delivery reporting.
type DeliveryFacadeStub struct {
	ReportFn func(context.Context, model.Identity, usecase.EventReport) (*model.DeliveryEvent, error)
	ListFn   func(context.Context, model.Identity) ([]model.DeliveryEvent, error)
}

func (s DeliveryFacadeStub) ReportDelivery(ctx context.Context, ident model.Identity, report usecase.EventReport) (*model.DeliveryEvent, error) {
	if s.ReportFn != nil {
		return s.ReportFn(ctx, ident, report)
	}
	date := model.Day(report.ServiceDate)
	return &model.DeliveryEvent{ID: 1, SubscriptionID: report.SubscriptionID, Status: model.EventMatched, MatchedDate: &date}, nil
}

func (s DeliveryFacadeStub) Deliveries(ctx context.Context, ident model.Identity) ([]model.DeliveryEvent, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, ident)
	}
	return []model.DeliveryEvent{{ID: 1, MilkmanID: ident.UserID}}, nil
}

// CalendarFacadeStub simulates vendor holiday management.
type CalendarFacadeStub struct {
	AddFn    func(context.Context, model.Identity, int64, time.Time, string) error
	RemoveFn func(context.Context, model.Identity, int64, time.Time) error
	ListFn   func(context.Context, model.Identity, int64, time.Time, time.Time) ([]model.Holiday, error)
}

func (s CalendarFacadeStub) AddHoliday(ctx context.Context, ident model.Identity, vendorID int64, date time.Time, reason string) error {
	if s.AddFn != nil {
		return s.AddFn(ctx, ident, vendorID, date, reason)
	}
	return nil
}

func (s CalendarFacadeStub) RemoveHoliday(ctx context.Context, ident model.Identity, vendorID int64, date time.Time) error {
	if s.RemoveFn != nil {
		return s.RemoveFn(ctx, ident, vendorID, date)
	}
	return nil
}

func (s CalendarFacadeStub) Holidays(ctx context.Context, ident model.Identity, vendorID int64, from, to time.Time) ([]model.Holiday, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, ident, vendorID, from, to)
	}
	return []model.Holiday{{VendorID: vendorID, Date: from}}, nil
}

// ReportFacadeStub returns preconfigured summaries.
type ReportFacadeStub struct {
	SummaryFn func(context.Context, model.Identity, time.Time, time.Time, model.ReportGroup) ([]model.ReportRow, error)
}

func (s ReportFacadeStub) FulfillmentSummary(ctx context.Context, ident model.Identity, from, to time.Time, group model.ReportGroup) ([]model.ReportRow, error) {
	if s.SummaryFn != nil {
		return s.SummaryFn(ctx, ident, from, to, group)
	}
	return []model.ReportRow{{Key: 1, Delivered: 2}}, nil
}

// AdminFacadeStub simulates the manual reconciliation queue.
type AdminFacadeStub struct {
	UnmatchedFn func(context.Context, model.Identity) ([]model.DeliveryEvent, error)
	ResolveFn   func(context.Context, model.Identity, int64, time.Time) error
}

func (s AdminFacadeStub) UnmatchedEvents(ctx context.Context, ident model.Identity) ([]model.DeliveryEvent, error) {
	if s.UnmatchedFn != nil {
		return s.UnmatchedFn(ctx, ident)
	}
	return []model.DeliveryEvent{{ID: 1, Status: model.EventUnmatched}}, nil
}

func (s AdminFacadeStub) ForceResolve(ctx context.Context, ident model.Identity, eventID int64, date time.Time) error {
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx, ident, eventID, date)
	}
	return nil
}

// SweepFacadeStub feeds the sweep worker subscription batches and records
// the sweeps it performs.
type SweepFacadeStub struct {
	sync.Mutex

	Batches [][]model.Subscription
	SweepFn func(context.Context, model.Subscription, time.Time, time.Time) (int, error)
	Swept   []int64
}

func (s *SweepFacadeStub) SubscriptionsForSweep(ctx context.Context, sweptBefore time.Time, limit int) ([]model.Subscription, error) {
	s.Lock()
	defer s.Unlock()
	if len(s.Batches) == 0 {
		return nil, nil
	}
	batch := s.Batches[0]
	s.Batches = s.Batches[1:]
	return batch, nil
}

func (s *SweepFacadeStub) SweepSubscription(ctx context.Context, sub model.Subscription, from, to time.Time) (int, error) {
	s.Lock()
	s.Swept = append(s.Swept, sub.ID)
	s.Unlock()
	if s.SweepFn != nil {
		return s.SweepFn(ctx, sub, from, to)
	}
	return 1, nil
}

package app

import (
	"context"
	"time"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/usecase"
)

// FulfillmentFacade is the single application entry point consumed by the
// HTTP handlers and the sweep worker. It enforces role capabilities before
// delegating to the use cases: ownership and role checks live here, domain
// rules live below.
type FulfillmentFacade struct {
	auth          *usecase.AuthUseCase
	subscriptions *usecase.SubscriptionUseCase
	schedule      *usecase.ScheduleUseCase
	reconcile     *usecase.ReconcileUseCase
	reports       *usecase.ReportUseCase
	calendar      *usecase.CalendarUseCase
}

func NewFulfillmentFacade(
	auth *usecase.AuthUseCase,
	subscriptions *usecase.SubscriptionUseCase,
	schedule *usecase.ScheduleUseCase,
	reconcile *usecase.ReconcileUseCase,
	reports *usecase.ReportUseCase,
	calendar *usecase.CalendarUseCase,
) *FulfillmentFacade {
	return &FulfillmentFacade{
		auth:          auth,
		subscriptions: subscriptions,
		schedule:      schedule,
		reconcile:     reconcile,
		reports:       reports,
		calendar:      calendar,
	}
}

// --- authentication ---

func (f *FulfillmentFacade) Register(ctx context.Context, login, password string, role model.Role) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password, role)
	return token, err
}

func (f *FulfillmentFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *FulfillmentFacade) ParseToken(token string) (model.Identity, error) {
	return f.auth.ParseToken(token)
}

// --- subscriptions ---

func (f *FulfillmentFacade) CreateSubscription(ctx context.Context, ident model.Identity, sub *model.Subscription) (*model.Subscription, error) {
	switch ident.Role {
	case model.RoleCustomer:
		sub.CustomerID = ident.UserID
	case model.RoleAdmin:
		// Admin may create on a customer's behalf; the payload names the customer.
	default:
		return nil, domainErrors.ErrPermissionDenied
	}
	return f.subscriptions.Create(ctx, sub)
}

func (f *FulfillmentFacade) Subscriptions(ctx context.Context, ident model.Identity) ([]model.Subscription, error) {
	switch ident.Role {
	case model.RoleCustomer:
		return f.subscriptions.ListByCustomer(ctx, ident.UserID)
	case model.RoleVendor:
		return f.subscriptions.ListByVendor(ctx, ident.UserID)
	case model.RoleAdmin:
		return f.subscriptions.ListInRange(ctx, time.Time{}, model.Day(time.Now()).AddDate(100, 0, 0))
	default:
		return nil, domainErrors.ErrPermissionDenied
	}
}

func (f *FulfillmentFacade) Schedule(ctx context.Context, ident model.Identity, id int64, from, to time.Time) ([]model.Occurrence, error) {
	if _, err := f.ownedSubscription(ctx, ident, id, true); err != nil {
		return nil, err
	}
	return f.schedule.Timeline(ctx, id, from, to)
}

func (f *FulfillmentFacade) PauseSubscription(ctx context.Context, ident model.Identity, id int64, from, to time.Time) (*model.Subscription, error) {
	if _, err := f.ownedSubscription(ctx, ident, id, false); err != nil {
		return nil, err
	}
	return f.subscriptions.Pause(ctx, id, from, to)
}

func (f *FulfillmentFacade) ResumeSubscription(ctx context.Context, ident model.Identity, id int64) (*model.Subscription, error) {
	if _, err := f.ownedSubscription(ctx, ident, id, false); err != nil {
		return nil, err
	}
	return f.subscriptions.Resume(ctx, id)
}

func (f *FulfillmentFacade) CancelSubscription(ctx context.Context, ident model.Identity, id int64) (*model.Subscription, error) {
	if _, err := f.ownedSubscription(ctx, ident, id, false); err != nil {
		return nil, err
	}
	return f.subscriptions.Cancel(ctx, id)
}

// ownedSubscription fetches the subscription and verifies the caller may
// act on it. Reads extend to the serving vendor and milkmen; writes are
// reserved for the owning customer and admins.
func (f *FulfillmentFacade) ownedSubscription(ctx context.Context, ident model.Identity, id int64, read bool) (*model.Subscription, error) {
	sub, err := f.subscriptions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch ident.Role {
	case model.RoleAdmin:
		return sub, nil
	case model.RoleCustomer:
		if sub.CustomerID == ident.UserID {
			return sub, nil
		}
	case model.RoleVendor:
		if read && sub.VendorID == ident.UserID {
			return sub, nil
		}
	case model.RoleMilkman:
		if read {
			return sub, nil
		}
	}
	return nil, domainErrors.ErrPermissionDenied
}

// --- deliveries ---

func (f *FulfillmentFacade) ReportDelivery(ctx context.Context, ident model.Identity, report usecase.EventReport) (*model.DeliveryEvent, error) {
	if ident.Role != model.RoleMilkman && ident.Role != model.RoleAdmin {
		return nil, domainErrors.ErrPermissionDenied
	}
	return f.reconcile.Report(ctx, ident.UserID, report)
}

func (f *FulfillmentFacade) Deliveries(ctx context.Context, ident model.Identity) ([]model.DeliveryEvent, error) {
	if ident.Role != model.RoleMilkman {
		return nil, domainErrors.ErrPermissionDenied
	}
	return f.reconcile.Deliveries(ctx, ident.UserID)
}

// --- vendor calendar ---

// calendarVendor resolves which vendor's calendar the caller may touch.
func calendarVendor(ident model.Identity, vendorID int64) (int64, error) {
	switch ident.Role {
	case model.RoleVendor:
		return ident.UserID, nil
	case model.RoleAdmin:
		if vendorID == 0 {
			return 0, domainErrors.ErrInvalidState
		}
		return vendorID, nil
	default:
		return 0, domainErrors.ErrPermissionDenied
	}
}

func (f *FulfillmentFacade) AddHoliday(ctx context.Context, ident model.Identity, vendorID int64, date time.Time, reason string) error {
	vendor, err := calendarVendor(ident, vendorID)
	if err != nil {
		return err
	}
	return f.calendar.AddHoliday(ctx, vendor, date, reason)
}

func (f *FulfillmentFacade) RemoveHoliday(ctx context.Context, ident model.Identity, vendorID int64, date time.Time) error {
	vendor, err := calendarVendor(ident, vendorID)
	if err != nil {
		return err
	}
	return f.calendar.RemoveHoliday(ctx, vendor, date)
}

func (f *FulfillmentFacade) Holidays(ctx context.Context, ident model.Identity, vendorID int64, from, to time.Time) ([]model.Holiday, error) {
	vendor, err := calendarVendor(ident, vendorID)
	if err != nil {
		return nil, err
	}
	return f.calendar.Holidays(ctx, vendor, from, to)
}

// --- reporting ---

func (f *FulfillmentFacade) FulfillmentSummary(ctx context.Context, ident model.Identity, from, to time.Time, group model.ReportGroup) ([]model.ReportRow, error) {
	switch ident.Role {
	case model.RoleAdmin:
		return f.reports.Summary(ctx, from, to, group)
	case model.RoleVendor:
		// A vendor sees only its own aggregate row.
		if group != model.GroupByVendor {
			return nil, domainErrors.ErrPermissionDenied
		}
		rows, err := f.reports.Summary(ctx, from, to, group)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if row.Key == ident.UserID {
				return []model.ReportRow{row}, nil
			}
		}
		return nil, nil
	default:
		return nil, domainErrors.ErrPermissionDenied
	}
}

// --- manual reconciliation ---

func (f *FulfillmentFacade) UnmatchedEvents(ctx context.Context, ident model.Identity) ([]model.DeliveryEvent, error) {
	if ident.Role != model.RoleAdmin {
		return nil, domainErrors.ErrPermissionDenied
	}
	return f.reconcile.Unmatched(ctx)
}

func (f *FulfillmentFacade) ForceResolve(ctx context.Context, ident model.Identity, eventID int64, date time.Time) error {
	if ident.Role != model.RoleAdmin {
		return domainErrors.ErrPermissionDenied
	}
	return f.reconcile.ForceResolve(ctx, ident.UserID, eventID, date)
}

// --- sweep worker ---

func (f *FulfillmentFacade) SubscriptionsForSweep(ctx context.Context, sweptBefore time.Time, limit int) ([]model.Subscription, error) {
	return f.reconcile.SubscriptionsForSweep(ctx, sweptBefore, limit)
}

func (f *FulfillmentFacade) SweepSubscription(ctx context.Context, sub model.Subscription, from, to time.Time) (int, error) {
	return f.reconcile.Sweep(ctx, sub, from, to)
}

package handlers

import (
	"context"
	"time"

	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/usecase"
)

// AuthFacade handles registration and login.
type AuthFacade interface {
	Register(ctx context.Context, login, password string, role model.Role) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
}

// SubscriptionFacade exposes subscription lifecycle and schedule reads.
type SubscriptionFacade interface {
	CreateSubscription(ctx context.Context, ident model.Identity, sub *model.Subscription) (*model.Subscription, error)
	Subscriptions(ctx context.Context, ident model.Identity) ([]model.Subscription, error)
	Schedule(ctx context.Context, ident model.Identity, id int64, from, to time.Time) ([]model.Occurrence, error)
	PauseSubscription(ctx context.Context, ident model.Identity, id int64, from, to time.Time) (*model.Subscription, error)
	ResumeSubscription(ctx context.Context, ident model.Identity, id int64) (*model.Subscription, error)
	CancelSubscription(ctx context.Context, ident model.Identity, id int64) (*model.Subscription, error)
}

// DeliveryFacade exposes delivery reporting for milkmen.
type DeliveryFacade interface {
	ReportDelivery(ctx context.Context, ident model.Identity, report usecase.EventReport) (*model.DeliveryEvent, error)
	Deliveries(ctx context.Context, ident model.Identity) ([]model.DeliveryEvent, error)
}

// CalendarFacade exposes vendor holiday management.
type CalendarFacade interface {
	AddHoliday(ctx context.Context, ident model.Identity, vendorID int64, date time.Time, reason string) error
	RemoveHoliday(ctx context.Context, ident model.Identity, vendorID int64, date time.Time) error
	Holidays(ctx context.Context, ident model.Identity, vendorID int64, from, to time.Time) ([]model.Holiday, error)
}

// ReportFacade exposes aggregated fulfillment summaries.
type ReportFacade interface {
	FulfillmentSummary(ctx context.Context, ident model.Identity, from, to time.Time, group model.ReportGroup) ([]model.ReportRow, error)
}

// AdminFacade exposes the unmatched-event queue and manual resolution.
type AdminFacade interface {
	UnmatchedEvents(ctx context.Context, ident model.Identity) ([]model.DeliveryEvent, error)
	ForceResolve(ctx context.Context, ident model.Identity, eventID int64, date time.Time) error
}

// FulfillmentFacade aggregates every capability the HTTP surface needs.
type FulfillmentFacade interface {
	AuthFacade
	SubscriptionFacade
	DeliveryFacade
	CalendarFacade
	ReportFacade
	AdminFacade
	ParseToken(token string) (model.Identity, error)
}

package repository

import (
	"context"
	"time"

	"github.com/milkway/milkway/internal/domain/model"
)

// DeliveryEventRepository describes the append-only delivery event store.
type DeliveryEventRepository interface {
	// Insert appends a delivery event. A duplicate external ID yields
	// ErrAlreadyExists; inserting a second matched event for the same
	// subscription and matched date yields ErrConflict.
	Insert(ctx context.Context, ev *model.DeliveryEvent) (*model.DeliveryEvent, error)
	GetByID(ctx context.Context, id int64) (*model.DeliveryEvent, error)
	ListByMilkman(ctx context.Context, milkmanID int64) ([]model.DeliveryEvent, error)
	ListUnmatched(ctx context.Context) ([]model.DeliveryEvent, error)
	// MatchedDates returns the set of dates already resolved for the
	// subscription within [from, to].
	MatchedDates(ctx context.Context, subscriptionID int64, from, to time.Time) ([]time.Time, error)
	// ListMatched returns matched events whose matched date falls in [from, to].
	ListMatched(ctx context.Context, from, to time.Time) ([]model.DeliveryEvent, error)
	// Resolve attaches an unmatched event to an occurrence date. The same
	// single-writer discipline applies: a second resolution for the same
	// subscription and date yields ErrConflict.
	Resolve(ctx context.Context, eventID int64, date time.Time) error
}

package repository

import (
	"context"
	"time"

	"github.com/milkway/milkway/internal/domain/model"
)

// SubscriptionRepository describes persistence operations with subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) (*model.Subscription, error)
	GetByID(ctx context.Context, id int64) (*model.Subscription, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Subscription, error)
	ListByVendor(ctx context.Context, vendorID int64) ([]model.Subscription, error)
	// ListInRange returns subscriptions whose service period overlaps
	// [from, to], cancelled ones included: their history stays reportable.
	ListInRange(ctx context.Context, from, to time.Time) ([]model.Subscription, error)
	// Update persists sub if its version matches the stored one, bumping
	// the version. A stale version yields ErrConflict.
	Update(ctx context.Context, sub *model.Subscription) error
	// SelectBatchForSweep claims up to limit subscriptions not swept since
	// the given cutoff, stamping them as swept.
	SelectBatchForSweep(ctx context.Context, sweptBefore time.Time, limit int) ([]model.Subscription, error)
}

package usecase

import (
	"context"
	"time"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/domain/repository"
)

// SubscriptionUseCase owns the subscription lifecycle state machine:
// active -> paused -> active, and active/paused -> cancelled (terminal).
type SubscriptionUseCase struct {
	subs     repository.SubscriptionRepository
	settings Settings
}

// NewSubscriptionUseCase constructs SubscriptionUseCase.
func NewSubscriptionUseCase(subs repository.SubscriptionRepository, settings Settings) *SubscriptionUseCase {
	return &SubscriptionUseCase{subs: subs, settings: settings}
}

// Create registers a new active subscription after validating its terms.
func (u *SubscriptionUseCase) Create(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	if err := ValidateRule(sub.Rule); err != nil {
		return nil, err
	}
	if err := ValidateQuantity(sub.Quantity); err != nil {
		return nil, err
	}

	sub.StartDate = model.Day(sub.StartDate)
	if sub.EndDate != nil {
		end := model.Day(*sub.EndDate)
		if end.Before(sub.StartDate) {
			return nil, domainErrors.ErrInvalidState
		}
		sub.EndDate = &end
	}

	sub.Status = model.SubscriptionActive
	sub.Pauses = nil
	sub.CancelledAt = nil
	return u.subs.Create(ctx, sub)
}

// Get fetches a subscription by identifier.
func (u *SubscriptionUseCase) Get(ctx context.Context, id int64) (*model.Subscription, error) {
	return u.subs.GetByID(ctx, id)
}

// ListByCustomer returns the customer's subscriptions.
func (u *SubscriptionUseCase) ListByCustomer(ctx context.Context, customerID int64) ([]model.Subscription, error) {
	return u.subs.ListByCustomer(ctx, customerID)
}

// ListByVendor returns subscriptions served by the vendor.
func (u *SubscriptionUseCase) ListByVendor(ctx context.Context, vendorID int64) ([]model.Subscription, error) {
	return u.subs.ListByVendor(ctx, vendorID)
}

// ListInRange returns subscriptions overlapping the date range.
func (u *SubscriptionUseCase) ListInRange(ctx context.Context, from, to time.Time) ([]model.Subscription, error) {
	return u.subs.ListInRange(ctx, from, to)
}

// Pause suspends deliveries for the closed window [from, to]. Open-ended
// pauses are rejected; only an active subscription can be paused.
func (u *SubscriptionUseCase) Pause(ctx context.Context, id int64, from, to time.Time) (*model.Subscription, error) {
	if from.IsZero() || to.IsZero() {
		return nil, domainErrors.ErrInvalidState
	}
	from, to = model.Day(from), model.Day(to)
	if to.Before(from) {
		return nil, domainErrors.ErrInvalidState
	}

	sub, err := u.subs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubscriptionActive {
		return nil, domainErrors.ErrInvalidState
	}

	sub.Pauses = append(sub.Pauses, model.PauseWindow{From: from, To: to})
	sub.Status = model.SubscriptionPaused
	if err := u.subs.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Resume reactivates a paused subscription. Pause windows that have not yet
// started are dropped and a window in progress is clamped to yesterday, so
// regeneration picks up from today.
func (u *SubscriptionUseCase) Resume(ctx context.Context, id int64) (*model.Subscription, error) {
	sub, err := u.subs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubscriptionPaused {
		return nil, domainErrors.ErrInvalidState
	}

	today := model.Day(u.settings.now())
	kept := sub.Pauses[:0]
	for _, w := range sub.Pauses {
		if !w.From.Before(today) {
			continue
		}
		if !w.To.Before(today) {
			w.To = today.AddDate(0, 0, -1)
		}
		if !w.To.Before(w.From) {
			kept = append(kept, w)
		}
	}
	sub.Pauses = kept
	sub.Status = model.SubscriptionActive
	if err := u.subs.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Cancel terminates the subscription. Cancellation is irreversible and
// truncates occurrence generation from today onward; the row is retained
// for reporting.
func (u *SubscriptionUseCase) Cancel(ctx context.Context, id int64) (*model.Subscription, error) {
	sub, err := u.subs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == model.SubscriptionCancelled {
		return nil, domainErrors.ErrInvalidState
	}

	today := model.Day(u.settings.now())
	sub.Status = model.SubscriptionCancelled
	sub.CancelledAt = &today
	if err := u.subs.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

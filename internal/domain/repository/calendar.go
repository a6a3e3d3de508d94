package repository

import (
	"context"
	"time"

	"github.com/milkway/milkway/internal/domain/model"
)

// CalendarRepository describes vendor holiday persistence.
type CalendarRepository interface {
	AddHoliday(ctx context.Context, h model.Holiday) error
	RemoveHoliday(ctx context.Context, vendorID int64, date time.Time) error
	Holidays(ctx context.Context, vendorID int64, from, to time.Time) ([]model.Holiday, error)
	AllHolidays(ctx context.Context, from, to time.Time) ([]model.Holiday, error)
}

// MissedRepository describes the append-only missed occurrence marks.
type MissedRepository interface {
	// Mark records the occurrence as missed. Returns false when the mark
	// already existed, which keeps the sweep idempotent.
	Mark(ctx context.Context, subscriptionID int64, date time.Time) (bool, error)
	MissedDates(ctx context.Context, subscriptionID int64, from, to time.Time) ([]time.Time, error)
	ListRange(ctx context.Context, from, to time.Time) ([]model.MissedMark, error)
}

// AuditRepository appends resolution audit entries.
type AuditRepository interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
	ListBySubscription(ctx context.Context, subscriptionID int64) ([]model.AuditEntry, error)
}

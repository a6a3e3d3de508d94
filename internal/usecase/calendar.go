package usecase

import (
	"context"
	"time"

	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/domain/repository"
)

// CalendarUseCase manages vendor holiday declarations. A holiday suppresses
// occurrence generation for every subscription the vendor serves on that
// date; removing it restores the occurrences, since schedules are derived.
type CalendarUseCase struct {
	calendar repository.CalendarRepository
}

// NewCalendarUseCase constructs CalendarUseCase.
func NewCalendarUseCase(calendar repository.CalendarRepository) *CalendarUseCase {
	return &CalendarUseCase{calendar: calendar}
}

// AddHoliday declares a vendor non-delivery date. Re-declaring an existing
// date updates its reason.
func (u *CalendarUseCase) AddHoliday(ctx context.Context, vendorID int64, date time.Time, reason string) error {
	return u.calendar.AddHoliday(ctx, model.Holiday{
		VendorID: vendorID,
		Date:     model.Day(date),
		Reason:   reason,
	})
}

// RemoveHoliday retracts a declared holiday.
func (u *CalendarUseCase) RemoveHoliday(ctx context.Context, vendorID int64, date time.Time) error {
	return u.calendar.RemoveHoliday(ctx, vendorID, model.Day(date))
}

// Holidays lists the vendor's declared holidays within [from, to].
func (u *CalendarUseCase) Holidays(ctx context.Context, vendorID int64, from, to time.Time) ([]model.Holiday, error) {
	return u.calendar.Holidays(ctx, vendorID, model.Day(from), model.Day(to))
}

package usecase

import (
	"time"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
)

// ValidateRule checks that a recurrence rule is well formed. Every valid
// rule yields at least one occurrence per calendar week, which the weekly
// kind only guarantees with a non-empty weekday set.
func ValidateRule(rule model.RecurrenceRule) error {
	switch rule.Kind {
	case model.RecurDaily, model.RecurAlternate:
		return nil
	case model.RecurWeekly:
		if len(rule.Weekdays) == 0 {
			return domainErrors.ErrInvalidRecurrence
		}
		for _, wd := range rule.Weekdays {
			if wd < time.Sunday || wd > time.Saturday {
				return domainErrors.ErrInvalidRecurrence
			}
		}
		return nil
	}
	return domainErrors.ErrInvalidRecurrence
}

// ValidateQuantity checks a delivery quantity in liters.
func ValidateQuantity(q float64) error {
	if q <= 0 {
		return domainErrors.ErrInvalidQuantity
	}
	return nil
}

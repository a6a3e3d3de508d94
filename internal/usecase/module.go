package usecase

import (
	"go.uber.org/fx"

	"github.com/milkway/milkway/internal/config"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(func(cfg *config.Config) Settings {
		return NewSettings(cfg.GraceWindowDays)
	}),
	fx.Provide(
		NewAuthUseCase,
		NewSubscriptionUseCase,
		NewScheduleUseCase,
		NewReconcileUseCase,
		NewReportUseCase,
		NewCalendarUseCase,
	),
)

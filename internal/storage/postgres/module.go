package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/milkway/milkway/internal/config"
	"github.com/milkway/milkway/internal/domain/repository"
)

// Module wires PostgreSQL storage and repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.UserRepository { return s.Users() },
		func(s *Storage) repository.SubscriptionRepository { return s.Subscriptions() },
		func(s *Storage) repository.DeliveryEventRepository { return s.Events() },
		func(s *Storage) repository.CalendarRepository { return s.Calendar() },
		func(s *Storage) repository.MissedRepository { return s.Missed() },
		func(s *Storage) repository.AuditRepository { return s.Audit() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}

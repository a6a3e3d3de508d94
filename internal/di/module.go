package di

import (
	"go.uber.org/fx"

	"github.com/milkway/milkway/internal/adapter/notify"
	"github.com/milkway/milkway/internal/app"
	"github.com/milkway/milkway/internal/config"
	"github.com/milkway/milkway/internal/logger"
	"github.com/milkway/milkway/internal/pkg/auth"
	"github.com/milkway/milkway/internal/server/http/handlers"
	"github.com/milkway/milkway/internal/server/http/router"
	"github.com/milkway/milkway/internal/storage/postgres"
	"github.com/milkway/milkway/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		notify.Module,
		usecase.Module,
		fx.Provide(func(f *app.FulfillmentFacade) handlers.FulfillmentFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

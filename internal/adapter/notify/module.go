package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/milkway/milkway/internal/config"
	"github.com/milkway/milkway/internal/usecase"
)

// Module exposes the notification sink to the fx graph. An empty notify
// address configures the no-op sink.
var Module = fx.Provide(newSink)

type sinkParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newSink(p sinkParams) (usecase.Notifier, error) {
	if p.Config.NotifyAddress == "" {
		return NopSink{}, nil
	}
	return NewHTTPSink(p.Config.NotifyAddress, p.Logger)
}

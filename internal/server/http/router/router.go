package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/milkway/milkway/internal/server/http/handlers"
	"github.com/milkway/milkway/internal/server/http/middleware"
)

// Setup builds the HTTP surface: public auth endpoints plus the
// token-protected delivery network API.
func Setup(facade handlers.FulfillmentFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		middleware.DecompressRequest(),
		gzip.Gzip(gzip.DefaultCompression),
	)

	api := r.Group("/api")

	api.POST("/user/register", handlers.Register(facade))
	api.POST("/user/login", handlers.Login(facade))

	authed := api.Group("", middleware.AuthRequired(facade))

	authed.POST("/subscriptions", handlers.CreateSubscription(facade))
	authed.GET("/subscriptions", handlers.ListSubscriptions(facade))
	authed.GET("/subscriptions/:id/schedule", handlers.Schedule(facade))
	authed.POST("/subscriptions/:id/pause", handlers.PauseSubscription(facade))
	authed.POST("/subscriptions/:id/resume", handlers.ResumeSubscription(facade))
	authed.POST("/subscriptions/:id/cancel", handlers.CancelSubscription(facade))

	authed.POST("/deliveries", handlers.ReportDelivery(facade))
	authed.GET("/deliveries", handlers.ListDeliveries(facade))

	authed.POST("/calendar/holidays", handlers.AddHoliday(facade))
	authed.GET("/calendar/holidays", handlers.ListHolidays(facade))
	authed.DELETE("/calendar/holidays/:date", handlers.RemoveHoliday(facade))

	authed.GET("/reports", handlers.FulfillmentSummary(facade))

	authed.GET("/admin/unmatched", handlers.UnmatchedEvents(facade))
	authed.POST("/admin/unmatched/:id/resolve", handlers.ForceResolve(facade))

	return r
}

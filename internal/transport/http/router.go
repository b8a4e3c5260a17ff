package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/ErlanBelekov/shiptrack/internal/auth"
	"github.com/ErlanBelekov/shiptrack/internal/transport/http/handler"
	"github.com/ErlanBelekov/shiptrack/internal/transport/http/middleware"
)

// NewRouter wires the public and token-gated routes. hsts should be true
// whenever the service is reached over TLS.
func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, shipmentHandler *handler.ShipmentHandler, tokens *auth.TokenManager, hsts bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(hsts))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(tokens)

	a := r.Group("/auth")
	a.POST("/register", authHandler.Register)
	a.POST("/login", authHandler.Login)
	a.GET("/is-verify", authMW, authHandler.IsVerify)

	shipments := r.Group("/shipments")
	// Public tracking lookup.
	shipments.GET("/:id", shipmentHandler.GetByTrackingID)

	protected := shipments.Group("", authMW)
	protected.GET("/all", shipmentHandler.List)
	protected.GET("/user/:id", shipmentHandler.ListByUser)
	protected.POST("", shipmentHandler.Create)
	protected.PUT("/:id", shipmentHandler.Update)
	protected.DELETE("/:id", shipmentHandler.Delete)

	return r
}

package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/api"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/logger"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/middleware"
)

// Options configures the router middleware stack
type Options struct {
	ServiceName    string
	AllowedOrigins []string
	Tracing        bool
}

// SetupRouter configures the application routes
func SetupRouter(ideasHandler *api.IdeasHandler, log *logger.Logger, opts Options) *gin.Engine {
	router := gin.New()

	if opts.Tracing {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		middleware.CORS(opts.AllowedOrigins),
	)

	ideasHandler.RegisterRoutes(router)

	return router
}

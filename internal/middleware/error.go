package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/logger"
)

// InternalServerError is the only message clients see for server-side failures
const InternalServerError = "Internal Server Error"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Recovery turns a panic into the standard 500 JSON body
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic while handling request",
			"panic", recovered,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDKey),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: InternalServerError})
	})
}

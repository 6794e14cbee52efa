package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/logger"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/middleware"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/recipe"
)

// Suggester produces dish suggestions and preparation steps
type Suggester interface {
	Suggest(ctx context.Context, ingredients []string) (*recipe.IdeasResponse, error)
	Steps(ctx context.Context, name string, ingredients []string) (*recipe.StepsResponse, error)
}

// IdeasHandler handles recipe suggestion requests
type IdeasHandler struct {
	suggester Suggester
	log       *logger.Logger
}

// NewIdeasHandler creates a new IdeasHandler instance
func NewIdeasHandler(suggester Suggester, log *logger.Logger) *IdeasHandler {
	return &IdeasHandler{suggester: suggester, log: log}
}

// RegisterRoutes registers the suggestion routes
func (h *IdeasHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/ideas", h.Ideas)
	router.POST("/steps", h.Steps)
	router.GET("/health", h.Health)
}

// Ideas handles POST /ideas
func (h *IdeasHandler) Ideas(c *gin.Context) {
	var req IdeasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, middleware.ErrorResponse{Error: bindingMessage(err)})
		return
	}

	resp, err := h.suggester.Suggest(c.Request.Context(), req.Ingredients)
	if err != nil {
		h.fail(c, "ideas", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Steps handles POST /steps
func (h *IdeasHandler) Steps(c *gin.Context) {
	var req StepsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, middleware.ErrorResponse{Error: bindingMessage(err)})
		return
	}

	resp, err := h.suggester.Steps(c.Request.Context(), *req.Name, req.Ingredients)
	if err != nil {
		h.fail(c, "steps", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health handles GET /health
func (h *IdeasHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

// fail logs the classified error and answers with the opaque 500 body
func (h *IdeasHandler) fail(c *gin.Context, op string, err error) {
	h.log.Error("request failed",
		"op", op,
		"kind", string(recipe.KindOf(err)),
		"error", err,
		"request_id", middleware.GetRequestID(c),
	)
	c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{Error: middleware.InternalServerError})
}

// bindingMessage turns a bind failure into a short client-facing message
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &verrs):
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, strings.ToLower(fe.Field()))
		}
		return fmt.Sprintf("missing required field(s): %s", strings.Join(missing, ", "))
	case errors.As(err, &typeErr):
		return fmt.Sprintf("field %s must be %s", typeErr.Field, typeErr.Type.String())
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "request body must be valid JSON"
	default:
		return err.Error()
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AssessHub-IN/portal-service/internal/services"
	"github.com/AssessHub-IN/portal-service/internal/utils"
)

// ErrorResponse is the uniform error body returned by every handler.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps non-entity responses.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the logging and error-mapping shared by all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs with the request-scoped logger when present.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.RequestLogger(c, h.logger).Info(msg, args...)
}

// parseIDParam parses a numeric path parameter. On failure it writes the
// 400 response itself and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0
	}
	return uint(id)
}

// handleServiceError maps service errors onto the HTTP error taxonomy.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationServiceError
	var permissionErr *services.PermissionError
	var conflictErr *services.ConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErr.Errors,
		})

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidOTP):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: err.Error(),
		})

	case errors.As(err, &permissionErr):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: permissionErr.Reason,
		})

	case errors.Is(err, services.ErrSubjectNotUnlocked):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Payment not completed for this item",
		})

	case services.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})

	case errors.As(err, &conflictErr),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrPaymentTerminal),
		errors.Is(err, services.ErrScheduleNotTransitable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})

	case errors.Is(err, services.ErrProofRequired),
		errors.Is(err, services.ErrProofInvalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})

	default:
		utils.RequestLogger(c, h.logger).Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

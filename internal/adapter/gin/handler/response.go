package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgerrors "ozo-backend/pkg/errors"
	"ozo-backend/pkg/logger"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UserResponse represents the HTTP response for user data. The password
// hash never appears here.
type UserResponse struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
}

// errorCode maps a typed error to the code reported in ErrorResponse.Error.
func errorCode(err error) string {
	var (
		validationErr   *pkgerrors.ValidationError
		conflictErr     *pkgerrors.ConflictError
		authErr         *pkgerrors.AuthError
		unauthorizedErr *pkgerrors.UnauthorizedError
		forbiddenErr    *pkgerrors.ForbiddenError
		notFoundErr     *pkgerrors.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		return "validation_error"
	case errors.As(err, &conflictErr):
		return "conflict"
	case errors.As(err, &authErr):
		return "invalid_credentials"
	case errors.As(err, &unauthorizedErr):
		return "unauthorized"
	case errors.As(err, &forbiddenErr):
		return "forbidden"
	case errors.As(err, &notFoundErr):
		return "not_found"
	default:
		return "internal_error"
	}
}

// handleError converts usecase errors to appropriate HTTP responses.
// Server errors are logged and reported with a generic message.
func handleError(c *gin.Context, log *zap.Logger, err error) {
	status := pkgerrors.StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context(), log).Error("request failed", zap.Error(err))
		c.JSON(status, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.JSON(status, ErrorResponse{
		Error:   errorCode(err),
		Message: err.Error(),
	})
}

func bindError(c *gin.Context, log *zap.Logger, err error) {
	logger.WithContext(c.Request.Context(), log).Warn("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: "Request body is not valid JSON for this endpoint",
	})
}

// parseID reads the :id path parameter, answering 400 when it is not a number.
func parseID(c *gin.Context, log *zap.Logger) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logger.WithContext(c.Request.Context(), log).Warn("invalid user id", zap.String("id", idStr))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a valid number",
		})
		return 0, false
	}
	return id, true
}

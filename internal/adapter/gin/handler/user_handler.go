package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ozo-backend/internal/adapter/gin/middleware"
	"ozo-backend/internal/usecase/user"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Service
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Service, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// UpdateUserRequest represents the HTTP request body for a partial update.
// Omitted fields are left unchanged; "full_name": null clears the name.
type UpdateUserRequest struct {
	Username *string        `json:"username"`
	Email    *string        `json:"email"`
	FullName NullableString `json:"full_name"`
	Password *string        `json:"password"`
}

// NullableString tells an absent JSON field apart from an explicit null.
type NullableString struct {
	Set   bool    // the key was present
	Value *string // nil when the key was null
}

// UnmarshalJSON records presence; it only runs when the key is in the body.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
	}
}

// GetUser handles GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, h.log)
	if !ok {
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	resp, err := h.uc.GetUserByEmail(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// UpdateUser handles PATCH /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, h.log)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.log, err)
		return
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:            id,
		Actor:         middleware.Subject(c),
		Username:      req.Username,
		Email:         req.Email,
		FullName:      req.FullName.Value,
		Password:      req.Password,
		ClearFullName: req.FullName.Set && req.FullName.Value == nil,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// DeleteUser handles DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, h.log)
	if !ok {
		return
	}

	resp, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{
		ID:    id,
		Actor: middleware.Subject(c),
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

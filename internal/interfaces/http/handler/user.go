package handler

import (
	"context"

	"github.com/adfinitum/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserService is the admin user management API
type UserService interface {
	List(ctx context.Context, filter identity.UserListFilter) (*identity.UserListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*identity.UserResponse, error)
	Update(ctx context.Context, id uuid.UUID, input identity.AdminUpdateInput) (*identity.UserResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserHandler handles user management HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Description  Paginated users, newest first
// @Tags         users
// @Produce      json
// @Param        search     query  string  false  "Email or name contains"
// @Param        role       query  string  false  "Role"
// @Param        is_active  query  bool    false  "Active flag"
// @Param        page       query  int     false  "Page number"  default(1)
// @Param        page_size  query  int     false  "Page size"    default(20)
// @Success      200 {object} APIResponse[[]identity.UserListItem]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var q UserListQuery
	if !h.bindQuery(c, &q) {
		return
	}

	result, err := h.userService.List(c.Request.Context(), identity.UserListFilter{
		Search:   q.Search,
		Role:     q.Role,
		IsActive: queryBool(c, "is_active"),
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Users, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
// @ID           getUser
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id  path  string  true  "User ID"  format(uuid)
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Update godoc
// @ID           updateUser
// @Summary      Update a user
// @Description  Updates profile fields, role and account flags
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true  "User ID"  format(uuid)
// @Param        request  body  AdminUserUpdateRequest  true  "Fields to change"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req AdminUserUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, identity.AdminUpdateInput{
		ProfileInput: req.ProfileRequest.toInput(),
		Role:         req.Role,
		IsActive:     req.IsActive,
		IsStaff:      req.IsStaff,
		IsSuperuser:  req.IsSuperuser,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Delete godoc
// @ID           deleteUser
// @Summary      Delete a user
// @Tags         users
// @Param        id  path  string  true  "User ID"  format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

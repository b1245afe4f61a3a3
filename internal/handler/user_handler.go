package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/authz"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"
)

type UserHandler struct {
	userService service.UserService
	auth        *middleware.Auth
}

// NewUserHandler sets up the routing dependencies for user directory endpoints
func NewUserHandler(userService service.UserService, auth *middleware.Auth) *UserHandler {
	return &UserHandler{userService: userService, auth: auth}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.auth.RequirePermission(authz.PermUsersView), h.ListUsers)
		users.GET("/:id", h.auth.RequirePermission(authz.PermUsersView), h.GetUserByID)
		users.POST("/:id/deactivate", h.auth.RequirePermission(authz.PermUsersManage), h.DeactivateUser)
		users.POST("/:id/reactivate", h.auth.RequirePermission(authz.PermUsersManage), h.ReactivateUser)
	}
}

// ListUsers handles GET /users and extracts pagination controls
// @Summary      List users
// @Description  Retrieves a paginated user list, filtered by the caller's visibility
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.Page}
// @Failure      500    {object}  response.Response
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	viewer := middleware.ProfileFromContext(c)
	params := pagination.Parse(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), viewer, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch users"))
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, users, total, params.Page, params.Limit, params.PageCount(total)))
}

// GetUserByID handles GET /users/:id
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Profile ID"
// @Success      200  {object}  response.Response{data=service.ProfileResponse}
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	viewer := middleware.ProfileFromContext(c)

	user, err := h.userService.GetUser(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// DeactivateUser handles POST /users/:id/deactivate
// @Summary      Deactivate user
// @Description  Marks the profile inactive and revokes its refresh tokens
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Profile ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/deactivate [post]
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	actor := middleware.ProfileFromContext(c)

	if err := h.userService.DeactivateUser(c.Request.Context(), actor, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "User not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "User deactivated"))
}

// ReactivateUser handles POST /users/:id/reactivate
// @Summary      Reactivate user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Profile ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/reactivate [post]
func (h *UserHandler) ReactivateUser(c *gin.Context) {
	actor := middleware.ProfileFromContext(c)

	if err := h.userService.ReactivateUser(c.Request.Context(), actor, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "User not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "User reactivated"))
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/authz"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/session"
	"backend/pkg/response"
)

// currentProvinceCookie holds the province the user is currently working in.
// Switching provinces moves this pointer only; the stored accessible list is
// never written by a switch.
const currentProvinceCookie = "current_province"

type ProfileHandler struct {
	profileService service.ProfileService
	auth           *middleware.Auth
}

// NewProfileHandler sets up the routing dependencies for profile endpoints
func NewProfileHandler(profileService service.ProfileService, auth *middleware.Auth) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, auth: auth}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	me := router.Group("/me")
	me.Use(h.auth.RequireAuth())
	{
		me.GET("", h.GetMe)
		me.PUT("", h.UpdateMe)
		me.POST("/complete", h.CompleteProfile)
		me.POST("/switch-province", h.SwitchProvince)
	}

	profiles := router.Group("/profiles")
	{
		profiles.PUT("/:id/role", h.auth.RequirePermission(authz.PermRolesManage), h.UpdateRole)
		profiles.PUT("/:id/permissions", h.auth.RequirePermission(authz.PermRolesManage), h.UpdatePermissions)
		profiles.PUT("/:id/provinces", h.auth.RequirePermission(authz.PermUsersManage), h.UpdateProvinces)
	}
}

// GetMe handles GET /me returning the profile, effective permissions and scope
// @Summary      Get current session
// @Description  Returns the caller's profile, effective permission set and accessible org units
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	profile := middleware.ProfileFromContext(c)
	currentProvince, _ := c.Cookie(currentProvinceCookie)

	me, err := h.profileService.Me(c.Request.Context(), profile, currentProvince)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, me))
}

// UpdateMe handles PUT /me for self-service profile edits
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateProfileRequest  true  "Profile fields"
// @Success      200      {object}  response.Response{data=service.ProfileResponse}
// @Failure      400      {object}  response.Response
// @Router       /me [put]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	profile := middleware.ProfileFromContext(c)

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	updated, err := h.profileService.UpdateProfile(c.Request.Context(), profile.AccountID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// CompleteProfile handles POST /me/complete, persisting the first-time profile
// @Summary      Complete onboarding
// @Description  Persists the guest profile created at first sign-in with the home province and branch
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CompleteProfileRequest  true  "Onboarding fields"
// @Success      200      {object}  response.Response{data=service.ProfileResponse}
// @Failure      400      {object}  response.Response
// @Router       /me/complete [post]
func (h *ProfileHandler) CompleteProfile(c *gin.Context) {
	profile := middleware.ProfileFromContext(c)

	var req service.CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	completed, err := h.profileService.CompleteOnboarding(c.Request.Context(), profile.AccountID, profile.Email, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, completed))
}

// SwitchProvince handles POST /me/switch-province
// @Summary      Switch working province
// @Description  Moves the current-province pointer to another accessible province
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SwitchProvinceRequest  true  "Target province"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /me/switch-province [post]
func (h *ProfileHandler) SwitchProvince(c *gin.Context) {
	profile := middleware.ProfileFromContext(c)

	var req service.SwitchProvinceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.profileService.ValidateProvinceSwitch(profile, req.ProvinceID); err != nil {
		if errors.Is(err, session.ErrAccessDenied) {
			c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Province not accessible"))
			return
		}
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	c.SetCookie(currentProvinceCookie, req.ProvinceID, 3600*24, "/", "", false, false)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"current_province": req.ProvinceID}))
}

// UpdateRole handles PUT /profiles/:id/role
// @Summary      Change a profile's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Profile ID"
// @Param        payload  body      service.UpdateRoleRequest  true  "New role"
// @Success      200      {object}  response.Response{data=service.ProfileResponse}
// @Failure      400      {object}  response.Response
// @Router       /profiles/{id}/role [put]
func (h *ProfileHandler) UpdateRole(c *gin.Context) {
	actor := middleware.ProfileFromContext(c)

	var req service.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	updated, err := h.profileService.UpdateRole(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// UpdatePermissions handles PUT /profiles/:id/permissions
// @Summary      Change a profile's permission overrides
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Profile ID"
// @Param        payload  body      service.UpdatePermissionsRequest  true  "Override list"
// @Success      200      {object}  response.Response{data=service.ProfileResponse}
// @Failure      400      {object}  response.Response
// @Router       /profiles/{id}/permissions [put]
func (h *ProfileHandler) UpdatePermissions(c *gin.Context) {
	actor := middleware.ProfileFromContext(c)

	var req service.UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	updated, err := h.profileService.UpdatePermissions(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// UpdateProvinces handles PUT /profiles/:id/provinces
// @Summary      Change a profile's accessible provinces
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Profile ID"
// @Param        payload  body      service.UpdateProvincesRequest  true  "Province IDs"
// @Success      200      {object}  response.Response{data=service.ProfileResponse}
// @Failure      400      {object}  response.Response
// @Router       /profiles/{id}/provinces [put]
func (h *ProfileHandler) UpdateProvinces(c *gin.Context) {
	actor := middleware.ProfileFromContext(c)

	var req service.UpdateProvincesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	updated, err := h.profileService.UpdateAccessibleProvinces(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

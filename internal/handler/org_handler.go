package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/authz"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"
)

type OrgHandler struct {
	orgService service.OrgService
	auth       *middleware.Auth
}

// NewOrgHandler sets up the routing dependencies for organization endpoints
func NewOrgHandler(orgService service.OrgService, auth *middleware.Auth) *OrgHandler {
	return &OrgHandler{orgService: orgService, auth: auth}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *OrgHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/provinces", h.auth.RequirePermission(authz.PermProvincesView), h.ListProvinces)
	router.GET("/branches", h.auth.RequirePermission(authz.PermBranchesView), h.ListBranches)
	router.GET("/departments", h.auth.RequireAuth(), h.ListDepartments)

	// Selector endpoints: the full lists narrowed to the caller's scope.
	me := router.Group("/me", h.auth.RequireAuth())
	{
		me.GET("/provinces", h.AccessibleProvinces)
		me.GET("/branches", h.AccessibleBranches)
	}
}

// ListProvinces handles GET /provinces
// @Summary      List provinces
// @Tags         organization
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ProvinceOption}
// @Router       /provinces [get]
func (h *OrgHandler) ListProvinces(c *gin.Context) {
	provinces, err := h.orgService.ListProvinces(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch provinces"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, provinces))
}

// ListBranches handles GET /branches with optional province filtering
// @Summary      List branches
// @Tags         organization
// @Produce      json
// @Security     BearerAuth
// @Param        province  query     string  false  "Filter by province ID"
// @Success      200       {object}  response.Response{data=[]service.BranchOption}
// @Router       /branches [get]
func (h *OrgHandler) ListBranches(c *gin.Context) {
	branches, err := h.orgService.ListBranches(c.Request.Context(), c.Query("province"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch branches"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, branches))
}

// ListDepartments handles GET /departments
// @Summary      List departments
// @Tags         organization
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.DepartmentOption}
// @Router       /departments [get]
func (h *OrgHandler) ListDepartments(c *gin.Context) {
	departments, err := h.orgService.ListDepartments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch departments"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, departments))
}

// AccessibleProvinces handles GET /me/provinces
// @Summary      List provinces accessible to the caller
// @Tags         organization
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ProvinceOption}
// @Router       /me/provinces [get]
func (h *OrgHandler) AccessibleProvinces(c *gin.Context) {
	profile := middleware.ProfileFromContext(c)

	provinces, err := h.orgService.AccessibleProvinces(c.Request.Context(), profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch provinces"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, provinces))
}

// AccessibleBranches handles GET /me/branches
// @Summary      List branches accessible to the caller
// @Tags         organization
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.BranchOption}
// @Router       /me/branches [get]
func (h *OrgHandler) AccessibleBranches(c *gin.Context) {
	profile := middleware.ProfileFromContext(c)

	branches, err := h.orgService.AccessibleBranches(c.Request.Context(), profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch branches"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, branches))
}

package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/domulabs/domu/internal/tenant/domain"
	"github.com/gin-gonic/gin"
)

type createTenantRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type updateTenantRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type assignTenantRequest struct {
	ApartmentID snowflake.ID `json:"apartment_id"`
}

// @Summary      Create Tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        request body createTenantRequest true "Create Tenant Request"
// @Success      200  {object}  tenantdomain.Tenant
// @Router       /tenants [post]
func (s *Server) CreateTenant(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenantSvc.CreateTenant(c.Request.Context(), tenantdomain.CreateTenantRequest{
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Tenants
// @Tags         tenants
// @Produce      json
// @Success      200  {object}  []tenantdomain.Tenant
// @Router       /tenants [get]
func (s *Server) ListTenants(c *gin.Context) {
	resp, err := s.tenantSvc.ListTenants(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Tenant
// @Tags         tenants
// @Produce      json
// @Param        tenant_id   path      string  true  "Tenant ID"
// @Success      200  {object}  tenantdomain.Tenant
// @Router       /tenants/{tenant_id} [get]
func (s *Server) GetTenant(c *gin.Context) {
	tenantID, err := parseIDParam(c, "tenant_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.tenantSvc.GetTenant(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        tenant_id   path      string  true  "Tenant ID"
// @Param        request body updateTenantRequest true "Update Tenant Request"
// @Success      200  {object}  tenantdomain.Tenant
// @Router       /tenants/{tenant_id} [patch]
func (s *Server) UpdateTenant(c *gin.Context) {
	tenantID, err := parseIDParam(c, "tenant_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenantSvc.UpdateTenant(c.Request.Context(), tenantID, tenantdomain.UpdateTenantRequest{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Tenant
// @Description  Delete a tenant; any apartment they occupied is freed
// @Tags         tenants
// @Produce      json
// @Param        tenant_id   path      string  true  "Tenant ID"
// @Success      200  {object}  map[string]string
// @Router       /tenants/{tenant_id} [delete]
func (s *Server) DeleteTenant(c *gin.Context) {
	tenantID, err := parseIDParam(c, "tenant_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.tenantSvc.DeleteTenant(c.Request.Context(), tenantID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Assign Tenant
// @Description  Move a tenant into a vacant apartment
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        tenant_id   path      string  true  "Tenant ID"
// @Param        request body assignTenantRequest true "Assign Tenant Request"
// @Success      200  {object}  map[string]string
// @Router       /tenants/{tenant_id}/assign [post]
func (s *Server) AssignTenant(c *gin.Context) {
	tenantID, err := parseIDParam(c, "tenant_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req assignTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.ApartmentID == 0 {
		AbortWithError(c, newValidationError("apartment_id", "required", "apartment_id is required"))
		return
	}

	if err := s.tenantSvc.AssignTenant(c.Request.Context(), tenantID, req.ApartmentID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Unassign Tenant
// @Description  Free an apartment's tenant of record
// @Tags         tenants
// @Produce      json
// @Param        apartment_id   path      string  true  "Apartment ID"
// @Success      200  {object}  map[string]string
// @Router       /apartments/{apartment_id}/tenant/unassign [post]
func (s *Server) UnassignTenant(c *gin.Context) {
	apartmentID, err := parseIDParam(c, "apartment_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.tenantSvc.UnassignTenant(c.Request.Context(), apartmentID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

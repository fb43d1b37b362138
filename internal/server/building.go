package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/gin-gonic/gin"
)

type createBuildingRequest struct {
	Address            string `json:"address"`
	ApartmentsCapacity uint   `json:"apartments_capacity"`
}

type updateMainMetersRequest struct {
	ColdWaterIndex   *int64   `json:"cold_water_index,omitempty"`
	HotWaterIndex    *int64   `json:"hot_water_index,omitempty"`
	GasIndex         *int64   `json:"gas_index,omitempty"`
	HeatingIndex     *int64   `json:"heating_index,omitempty"`
	ColdWaterPayment *float64 `json:"cold_water_payment,omitempty"`
	HotWaterPayment  *float64 `json:"hot_water_payment,omitempty"`
	GasPayment       *float64 `json:"gas_payment,omitempty"`
	HeatingPayment   *float64 `json:"heating_payment,omitempty"`
}

// @Summary      Create Building
// @Description  Create a building and provision its default utilities, apartments and subscriptions
// @Tags         buildings
// @Accept       json
// @Produce      json
// @Param        request body createBuildingRequest true "Create Building Request"
// @Success      200  {object}  buildingdomain.Building
// @Router       /buildings [post]
func (s *Server) CreateBuilding(c *gin.Context) {
	var req createBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.buildingSvc.CreateBuilding(c.Request.Context(), buildingdomain.CreateBuildingRequest{
		Address:            strings.TrimSpace(req.Address),
		ApartmentsCapacity: req.ApartmentsCapacity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Buildings
// @Tags         buildings
// @Produce      json
// @Success      200  {object}  []buildingdomain.Building
// @Router       /buildings [get]
func (s *Server) ListBuildings(c *gin.Context) {
	resp, err := s.buildingSvc.ListBuildings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Building
// @Tags         buildings
// @Produce      json
// @Param        building_id   path      string  true  "Building ID"
// @Success      200  {object}  buildingdomain.Building
// @Router       /buildings/{building_id} [get]
func (s *Server) GetBuilding(c *gin.Context) {
	buildingID, err := parseIDParam(c, "building_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.buildingSvc.GetBuilding(c.Request.Context(), buildingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Provision Building
// @Description  Re-run provisioning fan-out for an existing building; safe to retry
// @Tags         buildings
// @Produce      json
// @Param        building_id   path      string  true  "Building ID"
// @Success      200  {object}  buildingdomain.ProvisionCounts
// @Router       /buildings/{building_id}/provision [post]
func (s *Server) ProvisionBuilding(c *gin.Context) {
	buildingID, err := parseIDParam(c, "building_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	counts, err := s.buildingSvc.ProvisionBuilding(c.Request.Context(), buildingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": counts})
}

// @Summary      Update Main Meters
// @Description  Update building-level meter indices and committed payments
// @Tags         buildings
// @Accept       json
// @Produce      json
// @Param        building_id   path      string  true  "Building ID"
// @Param        request body updateMainMetersRequest true "Main Meter Update"
// @Success      200  {object}  buildingdomain.Building
// @Router       /buildings/{building_id}/meters [patch]
func (s *Server) UpdateMainMeters(c *gin.Context) {
	buildingID, err := parseIDParam(c, "building_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateMainMetersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.buildingSvc.UpdateMainMeters(c.Request.Context(), buildingID, buildingdomain.MainMeterUpdate{
		ColdWaterIndex:   req.ColdWaterIndex,
		HotWaterIndex:    req.HotWaterIndex,
		GasIndex:         req.GasIndex,
		HeatingIndex:     req.HeatingIndex,
		ColdWaterPayment: req.ColdWaterPayment,
		HotWaterPayment:  req.HotWaterPayment,
		GasPayment:       req.GasPayment,
		HeatingPayment:   req.HeatingPayment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseIDParam(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, newValidationError(name, "required", name+" is required")
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, newValidationError(name, "invalid_id", name+" is not a valid id")
	}
	return id, nil
}

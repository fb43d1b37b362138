package server

import (
	"net/http"
	"strings"
	"time"

	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/gin-gonic/gin"
)

type createUtilityRequest struct {
	Name           string     `json:"name"`
	Kind           string     `json:"kind"`
	ChargeBasis    string     `json:"charge_basis"`
	Provider       string     `json:"provider"`
	TaxOrWage      float64    `json:"tax_or_wage"`
	ContractStarts *time.Time `json:"contract_starts,omitempty"`
	ContractEnds   *time.Time `json:"contract_ends,omitempty"`
}

type updateUtilityRequest struct {
	Name           *string    `json:"name,omitempty"`
	Kind           *string    `json:"kind,omitempty"`
	ChargeBasis    *string    `json:"charge_basis,omitempty"`
	Provider       *string    `json:"provider,omitempty"`
	TaxOrWage      *float64   `json:"tax_or_wage,omitempty"`
	ContractStarts *time.Time `json:"contract_starts,omitempty"`
	ContractEnds   *time.Time `json:"contract_ends,omitempty"`
}

// @Summary      Create Utility
// @Description  Add a utility to a building and subscribe every apartment to it
// @Tags         utilities
// @Accept       json
// @Produce      json
// @Param        building_id   path      string  true  "Building ID"
// @Param        request body createUtilityRequest true "Create Utility Request"
// @Success      200  {object}  buildingdomain.Utility
// @Router       /buildings/{building_id}/utilities [post]
func (s *Server) CreateUtility(c *gin.Context) {
	buildingID, err := parseIDParam(c, "building_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createUtilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.buildingSvc.CreateUtility(c.Request.Context(), buildingdomain.CreateUtilityRequest{
		BuildingID:     buildingID,
		Name:           strings.TrimSpace(req.Name),
		Kind:           buildingdomain.UtilityKind(strings.TrimSpace(req.Kind)),
		ChargeBasis:    buildingdomain.ChargeBasis(strings.TrimSpace(req.ChargeBasis)),
		Provider:       buildingdomain.UtilityProvider(strings.TrimSpace(req.Provider)),
		TaxOrWage:      req.TaxOrWage,
		ContractStarts: req.ContractStarts,
		ContractEnds:   req.ContractEnds,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Utilities
// @Tags         utilities
// @Produce      json
// @Param        building_id   path      string  true  "Building ID"
// @Success      200  {object}  []buildingdomain.Utility
// @Router       /buildings/{building_id}/utilities [get]
func (s *Server) ListUtilities(c *gin.Context) {
	buildingID, err := parseIDParam(c, "building_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.buildingSvc.ListUtilities(c.Request.Context(), buildingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Utility
// @Description  Update utility attributes; dependent payment hints are refreshed
// @Tags         utilities
// @Accept       json
// @Produce      json
// @Param        utility_id   path      string  true  "Utility ID"
// @Param        request body updateUtilityRequest true "Update Utility Request"
// @Success      200  {object}  buildingdomain.Utility
// @Router       /utilities/{utility_id} [patch]
func (s *Server) UpdateUtility(c *gin.Context) {
	utilityID, err := parseIDParam(c, "utility_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateUtilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := buildingdomain.UpdateUtilityRequest{
		TaxOrWage:      req.TaxOrWage,
		ContractStarts: req.ContractStarts,
		ContractEnds:   req.ContractEnds,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		update.Name = &name
	}
	if req.Kind != nil {
		kind := buildingdomain.UtilityKind(strings.TrimSpace(*req.Kind))
		update.Kind = &kind
	}
	if req.ChargeBasis != nil {
		basis := buildingdomain.ChargeBasis(strings.TrimSpace(*req.ChargeBasis))
		update.ChargeBasis = &basis
	}
	if req.Provider != nil {
		provider := buildingdomain.UtilityProvider(strings.TrimSpace(*req.Provider))
		update.Provider = &provider
	}

	resp, err := s.buildingSvc.UpdateUtility(c.Request.Context(), utilityID, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

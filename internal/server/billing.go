package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Apartment Statement
// @Description  Compute an apartment's monthly obligation from live state
// @Tags         billing
// @Produce      json
// @Param        apartment_id   path      string  true  "Apartment ID"
// @Success      200  {object}  billingdomain.ApartmentStatement
// @Router       /apartments/{apartment_id}/billing/statement [get]
func (s *Server) ApartmentStatement(c *gin.Context) {
	apartmentID, err := parseIDParam(c, "apartment_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.billingSvc.ApartmentMonthlyPayment(c.Request.Context(), apartmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Building Total Expenses
// @Description  Sum of every apartment's monthly obligation
// @Tags         billing
// @Produce      json
// @Param        building_id   path      string  true  "Building ID"
// @Success      200  {object}  map[string]float64
// @Router       /buildings/{building_id}/billing/total [get]
func (s *Server) BuildingTotalExpenses(c *gin.Context) {
	buildingID, err := parseIDParam(c, "building_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	total, err := s.billingSvc.BuildingTotalExpenses(c.Request.Context(), buildingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"total": total}})
}

// @Summary      Building Committed Expenses
// @Description  Sum of the building's main meter payments
// @Tags         billing
// @Produce      json
// @Param        building_id   path      string  true  "Building ID"
// @Success      200  {object}  map[string]float64
// @Router       /buildings/{building_id}/billing/committed [get]
func (s *Server) BuildingCommittedExpenses(c *gin.Context) {
	buildingID, err := parseIDParam(c, "building_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	committed, err := s.billingSvc.BuildingCommittedExpenses(c.Request.Context(), buildingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"committed": committed}})
}

// @Summary      Profit Loss Report
// @Description  Billed totals against committed cost
// @Tags         billing
// @Produce      json
// @Param        building_id   path      string  true  "Building ID"
// @Success      200  {object}  billingdomain.ProfitLossReport
// @Router       /buildings/{building_id}/billing/profit-loss [get]
func (s *Server) ProfitLossReport(c *gin.Context) {
	buildingID, err := parseIDParam(c, "building_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.billingSvc.ProfitLossReport(c.Request.Context(), buildingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Building Report
// @Description  Full dashboard payload: per-apartment statements plus profit/loss
// @Tags         billing
// @Produce      json
// @Param        building_id   path      string  true  "Building ID"
// @Success      200  {object}  billingdomain.BuildingReport
// @Router       /buildings/{building_id}/billing/report [get]
func (s *Server) BuildingReport(c *gin.Context) {
	buildingID, err := parseIDParam(c, "building_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.billingSvc.BuildingReport(c.Request.Context(), buildingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

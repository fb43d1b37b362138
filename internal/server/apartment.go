package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/gin-gonic/gin"
)

type setOccupancyRequest struct {
	Occupancy uint `json:"occupancy"`
}

type counterUpdateRequest struct {
	Counters []struct {
		SubscriptionID snowflake.ID `json:"subscription_id"`
		IndexCounter   int64        `json:"index_counter"`
	} `json:"counters"`
}

type statusUpdateRequest struct {
	Subscriptions []struct {
		SubscriptionID snowflake.ID `json:"subscription_id"`
		Status         string       `json:"status"`
	} `json:"subscriptions"`
}

type markUnpaidRequest struct {
	// Amount overrides the computed monthly obligation when set.
	Amount *float64 `json:"amount,omitempty"`
}

// @Summary      Get Apartment
// @Tags         apartments
// @Produce      json
// @Param        apartment_id   path      string  true  "Apartment ID"
// @Success      200  {object}  buildingdomain.Apartment
// @Router       /apartments/{apartment_id} [get]
func (s *Server) GetApartment(c *gin.Context) {
	apartmentID, err := parseIDParam(c, "apartment_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.buildingSvc.GetApartment(c.Request.Context(), apartmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Apartments
// @Tags         apartments
// @Produce      json
// @Param        building_id   path      string  true  "Building ID"
// @Success      200  {object}  []buildingdomain.Apartment
// @Router       /buildings/{building_id}/apartments [get]
func (s *Server) ListApartments(c *gin.Context) {
	buildingID, err := parseIDParam(c, "building_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.buildingSvc.ListApartments(c.Request.Context(), buildingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Subscriptions
// @Tags         apartments
// @Produce      json
// @Param        apartment_id   path      string  true  "Apartment ID"
// @Success      200  {object}  []buildingdomain.UtilitySubscription
// @Router       /apartments/{apartment_id}/subscriptions [get]
func (s *Server) ListSubscriptions(c *gin.Context) {
	apartmentID, err := parseIDParam(c, "apartment_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.buildingSvc.ListSubscriptions(c.Request.Context(), apartmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Set Occupancy
// @Tags         apartments
// @Accept       json
// @Produce      json
// @Param        apartment_id   path      string  true  "Apartment ID"
// @Param        request body setOccupancyRequest true "Occupancy"
// @Success      200  {object}  buildingdomain.Apartment
// @Router       /apartments/{apartment_id}/occupancy [patch]
func (s *Server) SetOccupancy(c *gin.Context) {
	apartmentID, err := parseIDParam(c, "apartment_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req setOccupancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.buildingSvc.SetOccupancy(c.Request.Context(), apartmentID, req.Occupancy)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Apartment Counters
// @Description  Record meter readings for an apartment's metered subscriptions
// @Tags         apartments
// @Accept       json
// @Produce      json
// @Param        apartment_id   path      string  true  "Apartment ID"
// @Param        request body counterUpdateRequest true "Counter Updates"
// @Success      200  {object}  map[string]string
// @Router       /apartments/{apartment_id}/counters [post]
func (s *Server) UpdateApartmentCounters(c *gin.Context) {
	apartmentID, err := parseIDParam(c, "apartment_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req counterUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.Counters) == 0 {
		AbortWithError(c, newValidationError("counters", "required", "counters is required"))
		return
	}

	updates := make([]buildingdomain.CounterUpdate, 0, len(req.Counters))
	for _, counter := range req.Counters {
		updates = append(updates, buildingdomain.CounterUpdate{
			SubscriptionID: counter.SubscriptionID,
			IndexCounter:   counter.IndexCounter,
		})
	}

	if err := s.buildingSvc.UpdateApartmentCounters(c.Request.Context(), apartmentID, updates); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Update Subscription Status
// @Description  Enable or disable an apartment's utility subscriptions
// @Tags         apartments
// @Accept       json
// @Produce      json
// @Param        apartment_id   path      string  true  "Apartment ID"
// @Param        request body statusUpdateRequest true "Status Updates"
// @Success      200  {object}  map[string]string
// @Router       /apartments/{apartment_id}/subscriptions/status [post]
func (s *Server) UpdateSubscriptionStatus(c *gin.Context) {
	apartmentID, err := parseIDParam(c, "apartment_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.Subscriptions) == 0 {
		AbortWithError(c, newValidationError("subscriptions", "required", "subscriptions is required"))
		return
	}

	updates := make([]buildingdomain.StatusUpdate, 0, len(req.Subscriptions))
	for _, sub := range req.Subscriptions {
		updates = append(updates, buildingdomain.StatusUpdate{
			SubscriptionID: sub.SubscriptionID,
			Status:         buildingdomain.SubscriptionStatus(sub.Status),
		})
	}

	if err := s.buildingSvc.UpdateSubscriptionStatus(c.Request.Context(), apartmentID, updates); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Settle Payment
// @Description  Mark an apartment paid and clear its debt
// @Tags         apartments
// @Produce      json
// @Param        apartment_id   path      string  true  "Apartment ID"
// @Success      200  {object}  buildingdomain.Apartment
// @Router       /apartments/{apartment_id}/payments/settle [post]
func (s *Server) SettlePayment(c *gin.Context) {
	apartmentID, err := parseIDParam(c, "apartment_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.buildingSvc.SettlePayment(c.Request.Context(), apartmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Mark Unpaid
// @Description  Mark an apartment unpaid, rolling its monthly obligation into debt
// @Tags         apartments
// @Accept       json
// @Produce      json
// @Param        apartment_id   path      string  true  "Apartment ID"
// @Param        request body markUnpaidRequest false "Override Amount"
// @Success      200  {object}  buildingdomain.Apartment
// @Router       /apartments/{apartment_id}/payments/unpaid [post]
func (s *Server) MarkUnpaid(c *gin.Context) {
	apartmentID, err := parseIDParam(c, "apartment_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req markUnpaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	var amount float64
	if req.Amount != nil {
		amount = *req.Amount
	} else {
		statement, err := s.billingSvc.ApartmentMonthlyPayment(c.Request.Context(), apartmentID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		amount = statement.Total
	}

	resp, err := s.buildingSvc.MarkUnpaid(c.Request.Context(), apartmentID, amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

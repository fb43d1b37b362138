package server

import (
	"errors"
	"net/http"

	billingdomain "github.com/domulabs/domu/internal/billing/domain"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/domulabs/domu/internal/observability/logger"
	tenantdomain "github.com/domulabs/domu/internal/tenant/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrNotFound hides endpoints that should not exist for the caller.
var ErrNotFound = errors.New("not_found")

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Code }

func newValidationError(field, code, message string) error {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

func invalidRequestError() error {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body could not be parsed",
	}
}

var notFoundErrors = []error{
	ErrNotFound,
	buildingdomain.ErrBuildingNotFound,
	buildingdomain.ErrApartmentNotFound,
	buildingdomain.ErrUtilityNotFound,
	buildingdomain.ErrSubscriptionUnknown,
	billingdomain.ErrBuildingNotFound,
	billingdomain.ErrApartmentNotFound,
	tenantdomain.ErrTenantNotFound,
}

var validationErrors = []error{
	buildingdomain.ErrInvalidAddress,
	buildingdomain.ErrInvalidUtilityName,
	buildingdomain.ErrInvalidUtilityKind,
	buildingdomain.ErrInvalidChargeBasis,
	buildingdomain.ErrInvalidProvider,
	buildingdomain.ErrInvalidTaxOrWage,
	buildingdomain.ErrInvalidCounter,
	buildingdomain.ErrInvalidStatus,
	buildingdomain.ErrInvalidMainIndex,
	buildingdomain.ErrInvalidMainPayment,
	buildingdomain.ErrInvalidDebt,
	tenantdomain.ErrInvalidTenantName,
	tenantdomain.ErrInvalidTenantEmail,
}

var conflictErrors = []error{
	tenantdomain.ErrTenantAlreadyAssigned,
	tenantdomain.ErrApartmentOccupied,
}

// AbortWithError maps domain errors onto HTTP statuses and writes the
// response body. Unknown errors become a 500 with no detail leaked.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
		return
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": gin.H{"code": err.Error()}})
			return
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": err.Error()}})
			return
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": gin.H{"code": err.Error()}})
			return
		}
	}

	logger.FromContext(c.Request.Context()).Error("unhandled error", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "internal_error"}})
}

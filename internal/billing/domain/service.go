package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
)

var (
	ErrBuildingNotFound  = errors.New("building_not_found")
	ErrApartmentNotFound = errors.New("apartment_not_found")
)

// ApartmentCharge is one subscription's share of an apartment's obligation.
type ApartmentCharge struct {
	SubscriptionID snowflake.ID                      `json:"subscription_id"`
	UtilityID      snowflake.ID                      `json:"utility_id"`
	UtilityName    string                            `json:"utility_name"`
	ChargeBasis    buildingdomain.ChargeBasis        `json:"charge_basis"`
	Status         buildingdomain.SubscriptionStatus `json:"status"`
	Amount         float64                           `json:"amount"`
}

// ApartmentStatement is an apartment's computed obligation plus its parts.
type ApartmentStatement struct {
	ApartmentID     snowflake.ID                 `json:"apartment_id"`
	ApartmentNumber uint                         `json:"apartment_number"`
	PaymentStatus   buildingdomain.PaymentStatus `json:"payment_status"`
	Debt            float64                      `json:"debt"`
	Total           float64                      `json:"total"`
	Charges         []ApartmentCharge            `json:"charges"`
}

// ProfitLossReport compares billed totals against actual committed cost.
// Net is positive when tenants are billed more than the building spent.
type ProfitLossReport struct {
	BuildingID     snowflake.ID `json:"building_id"`
	BilledTotal    float64      `json:"billed_total"`
	CommittedTotal float64      `json:"committed_total"`
	Net            float64      `json:"net"`
	GeneratedAt    time.Time    `json:"generated_at"`
}

// BuildingReport is the dashboard payload for one building.
type BuildingReport struct {
	BuildingID         snowflake.ID         `json:"building_id"`
	Address            string               `json:"address"`
	ApartmentsCapacity uint                 `json:"apartments_capacity"`
	OccupiedApartments int                  `json:"occupied_apartments"`
	Statements         []ApartmentStatement `json:"statements"`
	ProfitLoss         ProfitLossReport     `json:"profit_loss"`
}

// Service computes payment obligations. Strictly read-only: values are
// always re-derived from live state, never from cached subscription hints.
type Service interface {
	ApartmentMonthlyPayment(ctx context.Context, apartmentID snowflake.ID) (*ApartmentStatement, error)
	BuildingTotalExpenses(ctx context.Context, buildingID snowflake.ID) (float64, error)
	BuildingCommittedExpenses(ctx context.Context, buildingID snowflake.ID) (float64, error)
	ProfitLossReport(ctx context.Context, buildingID snowflake.ID) (*ProfitLossReport, error)
	BuildingReport(ctx context.Context, buildingID snowflake.ID) (*BuildingReport, error)
}

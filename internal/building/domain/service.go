package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CreateBuildingRequest registers a building and triggers provisioning.
type CreateBuildingRequest struct {
	Address            string `json:"address"`
	ApartmentsCapacity uint   `json:"apartments_capacity"`
}

// CreateUtilityRequest adds a utility to an existing building; the
// subscription fan-out runs in the same transaction.
type CreateUtilityRequest struct {
	BuildingID     snowflake.ID
	Name           string
	Kind           UtilityKind
	ChargeBasis    ChargeBasis
	Provider       UtilityProvider
	TaxOrWage      float64
	ContractStarts *time.Time
	ContractEnds   *time.Time
}

// UpdateUtilityRequest changes a utility's rate or contract metadata.
// Nil fields are left untouched; the owning building never changes.
type UpdateUtilityRequest struct {
	Name           *string
	Kind           *UtilityKind
	ChargeBasis    *ChargeBasis
	Provider       *UtilityProvider
	TaxOrWage      *float64
	ContractStarts *time.Time
	ContractEnds   *time.Time
}

// CounterUpdate sets the meter reading of one subscription.
type CounterUpdate struct {
	SubscriptionID snowflake.ID `json:"subscription_id"`
	IndexCounter   int64        `json:"index_counter"`
}

// StatusUpdate enables or disables one subscription.
type StatusUpdate struct {
	SubscriptionID snowflake.ID       `json:"subscription_id"`
	Status         SubscriptionStatus `json:"status"`
}

// MainMeterUpdate carries administrator-entered readings and actual costs
// for the building's four supply lines. Nil fields are left untouched.
type MainMeterUpdate struct {
	ColdWaterIndex *int64
	HotWaterIndex  *int64
	GasIndex       *int64
	HeatingIndex   *int64

	ColdWaterPayment *float64
	HotWaterPayment  *float64
	GasPayment       *float64
	HeatingPayment   *float64
}

// ProvisionCounts reports how many records a provisioning pass created.
type ProvisionCounts struct {
	Utilities     int `json:"utilities"`
	Apartments    int `json:"apartments"`
	Subscriptions int `json:"subscriptions"`
}

// Service is the provisioning engine plus the inventory write surface.
// Creation operations are atomic: either the full record fan-out becomes
// visible or nothing does. Provisioning is idempotent per record, so a retry
// never duplicates apartments, utilities, or subscriptions.
type Service interface {
	CreateBuilding(ctx context.Context, req CreateBuildingRequest) (*Building, error)
	ProvisionBuilding(ctx context.Context, buildingID snowflake.ID) (ProvisionCounts, error)
	GetBuilding(ctx context.Context, buildingID snowflake.ID) (*Building, error)
	ListBuildings(ctx context.Context) ([]Building, error)
	UpdateMainMeters(ctx context.Context, buildingID snowflake.ID, update MainMeterUpdate) (*Building, error)

	CreateUtility(ctx context.Context, req CreateUtilityRequest) (*Utility, error)
	UpdateUtility(ctx context.Context, utilityID snowflake.ID, req UpdateUtilityRequest) (*Utility, error)
	ListUtilities(ctx context.Context, buildingID snowflake.ID) ([]Utility, error)

	GetApartment(ctx context.Context, apartmentID snowflake.ID) (*Apartment, error)
	ListApartments(ctx context.Context, buildingID snowflake.ID) ([]Apartment, error)
	ListSubscriptions(ctx context.Context, apartmentID snowflake.ID) ([]UtilitySubscription, error)
	SetOccupancy(ctx context.Context, apartmentID snowflake.ID, occupancy uint) (*Apartment, error)
	UpdateApartmentCounters(ctx context.Context, apartmentID snowflake.ID, updates []CounterUpdate) error
	UpdateSubscriptionStatus(ctx context.Context, apartmentID snowflake.ID, updates []StatusUpdate) error

	SettlePayment(ctx context.Context, apartmentID snowflake.ID) (*Apartment, error)
	MarkUnpaid(ctx context.Context, apartmentID snowflake.ID, amount float64) (*Apartment, error)
}

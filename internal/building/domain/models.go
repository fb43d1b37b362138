// Package domain contains the persistence models and service contract for
// building inventory and provisioning.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UtilityKind distinguishes building-wide from per-apartment utilities.
type UtilityKind string

const (
	// UtilityKindMutual marks a cost apportioned across all apartments.
	UtilityKindMutual UtilityKind = "mutual"
	// UtilityKindIndividual marks a cost attributed to one apartment.
	UtilityKindIndividual UtilityKind = "individual"
)

// ChargeBasis selects how a utility's monthly cost is derived.
type ChargeBasis string

const (
	ChargeBasisPerPerson    ChargeBasis = "per_person"
	ChargeBasisPerApartment ChargeBasis = "per_apartment"
	ChargeBasisMetered      ChargeBasis = "metered"
)

// UtilityProvider identifies who supplies the utility.
type UtilityProvider string

const (
	ProviderCity    UtilityProvider = "city"
	ProviderPrivate UtilityProvider = "private"
)

// PaymentStatus tracks whether an apartment settled its current obligation.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// SubscriptionStatus marks whether a subscription contributes to billing.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusDisabled SubscriptionStatus = "disabled"
)

// Building is the root of the provisioning tree. Capacity is immutable after
// creation; the main-meter fields hold administrator-entered readings and
// actual incurred costs for the four supply lines.
type Building struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	Address            string       `gorm:"type:text;not null" json:"address"`
	ApartmentsCapacity uint         `gorm:"not null" json:"apartments_capacity"`

	ColdWaterMainIndex int64 `gorm:"not null;default:0" json:"cold_water_main_index"`
	HotWaterMainIndex  int64 `gorm:"not null;default:0" json:"hot_water_main_index"`
	GasMainIndex       int64 `gorm:"not null;default:0" json:"gas_main_index"`
	HeatingMainIndex   int64 `gorm:"not null;default:0" json:"heating_main_index"`

	ColdWaterMainPayment float64 `gorm:"not null;default:0" json:"cold_water_main_payment"`
	HotWaterMainPayment  float64 `gorm:"not null;default:0" json:"hot_water_main_payment"`
	GasMainPayment       float64 `gorm:"not null;default:0" json:"gas_main_payment"`
	HeatingMainPayment   float64 `gorm:"not null;default:0" json:"heating_main_payment"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Building) TableName() string { return "buildings" }

// Utility is a billable service owned by one building.
type Utility struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	BuildingID  snowflake.ID    `gorm:"not null;index" json:"building_id"`
	Name        string          `gorm:"type:text;not null" json:"name"`
	Kind        UtilityKind     `gorm:"type:text;not null" json:"kind"`
	ChargeBasis ChargeBasis     `gorm:"type:text;not null" json:"charge_basis"`
	Provider    UtilityProvider `gorm:"type:text;not null;default:'city'" json:"provider"`

	ContractStarts *time.Time `gorm:"" json:"contract_starts,omitempty"`
	ContractEnds   *time.Time `gorm:"" json:"contract_ends,omitempty"`

	// TaxOrWage is the utility's rate: per person, per apartment share, or
	// per metered unit depending on ChargeBasis.
	TaxOrWage float64 `gorm:"not null;default:0" json:"tax_or_wage"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Utility) TableName() string { return "utilities" }

// Apartment is a billable unit within a building, numbered 1..capacity.
type Apartment struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	BuildingID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_apartments_building_number,priority:1" json:"building_id"`
	Number     uint         `gorm:"not null;uniqueIndex:ux_apartments_building_number,priority:2" json:"number"`

	// TenantID is unique across apartments: a tenant occupies at most one.
	TenantID *snowflake.ID `gorm:"uniqueIndex:ux_apartments_tenant" json:"tenant_id,omitempty"`

	Occupancy     uint          `gorm:"not null;default:0" json:"occupancy"`
	PaymentStatus PaymentStatus `gorm:"type:text;not null;default:'paid'" json:"payment_status"`
	Debt          float64       `gorm:"not null;default:0" json:"debt"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Apartment) TableName() string { return "apartments" }

// UtilitySubscription links one utility to one apartment. The set of
// subscriptions for a building is always the full Apartments x Utilities
// cross-product.
type UtilitySubscription struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ApartmentID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_subscriptions_apartment_utility,priority:1" json:"apartment_id"`
	UtilityID   snowflake.ID `gorm:"not null;index;uniqueIndex:ux_subscriptions_apartment_utility,priority:2" json:"utility_id"`

	// IndexCounter is the meter reading used by metered utilities.
	IndexCounter int64              `gorm:"not null;default:0" json:"index_counter"`
	Status       SubscriptionStatus `gorm:"type:text;not null;default:'disabled'" json:"status"`

	// MonthlyPayment is a denormalized hint refreshed on writes; billing
	// always recomputes from live state.
	MonthlyPayment float64 `gorm:"not null;default:0" json:"monthly_payment"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (UtilitySubscription) TableName() string { return "utility_subscriptions" }

// DefaultUtilitySpec describes one of the utilities provisioned with every
// new building.
type DefaultUtilitySpec struct {
	Name        string
	Kind        UtilityKind
	ChargeBasis ChargeBasis
	Provider    UtilityProvider
}

// DefaultUtilities returns the four supply lines every building starts with.
// Rates stay at zero until the administrator sets them.
func DefaultUtilities() []DefaultUtilitySpec {
	return []DefaultUtilitySpec{
		{Name: "Cold Water", Kind: UtilityKindIndividual, ChargeBasis: ChargeBasisMetered, Provider: ProviderCity},
		{Name: "Hot Water", Kind: UtilityKindIndividual, ChargeBasis: ChargeBasisMetered, Provider: ProviderCity},
		{Name: "Gas Power", Kind: UtilityKindIndividual, ChargeBasis: ChargeBasisMetered, Provider: ProviderCity},
		{Name: "Heating Power", Kind: UtilityKindIndividual, ChargeBasis: ChargeBasisMetered, Provider: ProviderCity},
	}
}

// ValidKind reports whether the given utility kind is known.
func ValidKind(kind UtilityKind) bool {
	switch kind {
	case UtilityKindMutual, UtilityKindIndividual:
		return true
	default:
		return false
	}
}

// ValidChargeBasis reports whether the given charge basis is known.
func ValidChargeBasis(basis ChargeBasis) bool {
	switch basis {
	case ChargeBasisPerPerson, ChargeBasisPerApartment, ChargeBasisMetered:
		return true
	default:
		return false
	}
}

// ValidProvider reports whether the given provider is known.
func ValidProvider(provider UtilityProvider) bool {
	switch provider {
	case ProviderCity, ProviderPrivate:
		return true
	default:
		return false
	}
}

package domain

import "errors"

var (
	ErrInvalidAddress      = errors.New("invalid_address")
	ErrBuildingNotFound    = errors.New("building_not_found")
	ErrApartmentNotFound   = errors.New("apartment_not_found")
	ErrUtilityNotFound     = errors.New("utility_not_found")
	ErrInvalidUtilityName  = errors.New("invalid_utility_name")
	ErrInvalidUtilityKind  = errors.New("invalid_utility_kind")
	ErrInvalidChargeBasis  = errors.New("invalid_charge_basis")
	ErrInvalidProvider     = errors.New("invalid_provider")
	ErrInvalidTaxOrWage    = errors.New("invalid_tax_or_wage")
	ErrInvalidCounter      = errors.New("invalid_index_counter")
	ErrInvalidStatus       = errors.New("invalid_subscription_status")
	ErrInvalidMainIndex    = errors.New("invalid_main_index")
	ErrInvalidMainPayment  = errors.New("invalid_main_payment")
	ErrInvalidDebt         = errors.New("invalid_debt_amount")
	ErrSubscriptionUnknown = errors.New("subscription_not_found")
)

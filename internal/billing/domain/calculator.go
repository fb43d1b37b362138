// Package domain holds the pure billing arithmetic and the read-side
// service contract. Nothing here mutates stored state.
package domain

import (
	"math"

	buildingdomain "github.com/domulabs/domu/internal/building/domain"
)

// MonthlySubscriptionCost derives one subscription's current obligation from
// live building, apartment, and utility state. Disabled subscriptions
// contribute nothing.
func MonthlySubscriptionCost(
	building buildingdomain.Building,
	apartment buildingdomain.Apartment,
	utility buildingdomain.Utility,
	sub buildingdomain.UtilitySubscription,
) float64 {
	if sub.Status == buildingdomain.SubscriptionStatusDisabled {
		return 0
	}
	switch utility.ChargeBasis {
	case buildingdomain.ChargeBasisPerPerson:
		return float64(apartment.Occupancy) * utility.TaxOrWage
	case buildingdomain.ChargeBasisPerApartment:
		// Zero-capacity buildings owe nothing rather than dividing by zero.
		if building.ApartmentsCapacity == 0 {
			return 0
		}
		return utility.TaxOrWage / float64(building.ApartmentsCapacity)
	case buildingdomain.ChargeBasisMetered:
		return float64(sub.IndexCounter) * utility.TaxOrWage
	default:
		return 0
	}
}

// CommittedExpenses sums the administrator-entered actual costs of the four
// main supply lines.
func CommittedExpenses(building buildingdomain.Building) float64 {
	return building.ColdWaterMainPayment +
		building.HotWaterMainPayment +
		building.GasMainPayment +
		building.HeatingMainPayment
}

// Round2 rounds to two decimal places. Applied only to the final
// profit/loss figure, never mid-computation.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

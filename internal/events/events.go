package events

// Provisioning and payment event types recorded in the outbox.
const (
	EventBuildingProvisioned = "building.provisioned"
	EventUtilityProvisioned  = "utility.provisioned"
	EventTenantAssigned      = "tenant.assigned"
	EventTenantUnassigned    = "tenant.unassigned"
	EventPaymentSettled      = "payment.settled"
	EventPaymentMarkedUnpaid = "payment.marked_unpaid"
)

// BuildingProvisionedPayload records the fan-out performed for a building.
type BuildingProvisionedPayload struct {
	BuildingID    string `json:"building_id"`
	Utilities     int    `json:"utilities"`
	Apartments    int    `json:"apartments"`
	Subscriptions int    `json:"subscriptions"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p BuildingProvisionedPayload) ToMap() map[string]any {
	return map[string]any{
		"building_id":   p.BuildingID,
		"utilities":     p.Utilities,
		"apartments":    p.Apartments,
		"subscriptions": p.Subscriptions,
	}
}

// UtilityProvisionedPayload records the fan-out performed for a late utility.
type UtilityProvisionedPayload struct {
	UtilityID     string `json:"utility_id"`
	BuildingID    string `json:"building_id"`
	Subscriptions int    `json:"subscriptions"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p UtilityProvisionedPayload) ToMap() map[string]any {
	return map[string]any{
		"utility_id":    p.UtilityID,
		"building_id":   p.BuildingID,
		"subscriptions": p.Subscriptions,
	}
}

// TenantAssignmentPayload records a tenant moving in or out of an apartment.
type TenantAssignmentPayload struct {
	ApartmentID string `json:"apartment_id"`
	TenantID    string `json:"tenant_id,omitempty"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p TenantAssignmentPayload) ToMap() map[string]any {
	payload := map[string]any{"apartment_id": p.ApartmentID}
	if p.TenantID != "" {
		payload["tenant_id"] = p.TenantID
	}
	return payload
}

package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrTenantNotFound        = errors.New("tenant_not_found")
	ErrInvalidTenantName     = errors.New("invalid_tenant_name")
	ErrInvalidTenantEmail    = errors.New("invalid_tenant_email")
	ErrTenantAlreadyAssigned = errors.New("tenant_already_assigned")
	ErrApartmentOccupied     = errors.New("apartment_occupied")
)

type Tenant struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	FullName  string       `gorm:"not null" json:"full_name"`
	Email     string       `gorm:"index" json:"email"`
	Phone     string       `json:"phone"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }

type CreateTenantRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type UpdateTenantRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

type Service interface {
	CreateTenant(ctx context.Context, req CreateTenantRequest) (*Tenant, error)
	GetTenant(ctx context.Context, tenantID snowflake.ID) (*Tenant, error)
	ListTenants(ctx context.Context) ([]Tenant, error)
	UpdateTenant(ctx context.Context, tenantID snowflake.ID, req UpdateTenantRequest) (*Tenant, error)
	DeleteTenant(ctx context.Context, tenantID snowflake.ID) error

	// AssignTenant moves a tenant into an apartment. A tenant occupies at
	// most one apartment at a time and an apartment holds at most one
	// tenant of record.
	AssignTenant(ctx context.Context, tenantID, apartmentID snowflake.ID) error
	UnassignTenant(ctx context.Context, apartmentID snowflake.ID) error
}

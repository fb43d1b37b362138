package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/domulabs/domu/internal/clock"
	"github.com/domulabs/domu/internal/events"
	tenantdomain "github.com/domulabs/domu/internal/tenant/domain"
	"github.com/domulabs/domu/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	outbox *events.Outbox

	tenantrepo    repository.Repository[tenantdomain.Tenant]
	apartmentrepo repository.Repository[buildingdomain.Apartment]
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Outbox *events.Outbox
}

func NewService(p ServiceParam) tenantdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		genID: p.GenID,
		clock: p.Clock,

		outbox: p.Outbox,

		tenantrepo:    repository.ProvideStore[tenantdomain.Tenant](p.DB),
		apartmentrepo: repository.ProvideStore[buildingdomain.Apartment](p.DB),
	}
}

func (s *Service) CreateTenant(ctx context.Context, req tenantdomain.CreateTenantRequest) (*tenantdomain.Tenant, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, tenantdomain.ErrInvalidTenantName
	}
	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return nil, tenantdomain.ErrInvalidTenantEmail
	}

	now := s.clock.Now()
	tenant := tenantdomain.Tenant{
		ID:        s.genID.Generate(),
		FullName:  name,
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tenantrepo.Create(ctx, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *Service) GetTenant(ctx context.Context, tenantID snowflake.ID) (*tenantdomain.Tenant, error) {
	tenant, err := s.tenantrepo.FindOne(ctx, "id = ?", tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, tenantdomain.ErrTenantNotFound
	}
	return tenant, nil
}

func (s *Service) ListTenants(ctx context.Context) ([]tenantdomain.Tenant, error) {
	return s.tenantrepo.Find(ctx)
}

func (s *Service) UpdateTenant(ctx context.Context, tenantID snowflake.ID, req tenantdomain.UpdateTenantRequest) (*tenantdomain.Tenant, error) {
	tenant, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, tenantdomain.ErrInvalidTenantName
		}
		tenant.FullName = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.Contains(email, "@") {
			return nil, tenantdomain.ErrInvalidTenantEmail
		}
		tenant.Email = email
	}
	if req.Phone != nil {
		tenant.Phone = strings.TrimSpace(*req.Phone)
	}
	tenant.UpdatedAt = s.clock.Now()

	if err := s.tenantrepo.Save(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// DeleteTenant removes a tenant and frees the apartment they occupied, if
// any. The apartment itself is never deleted.
func (s *Service) DeleteTenant(ctx context.Context, tenantID snowflake.ID) error {
	tenant, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.WithContext(ctx).
			Model(&buildingdomain.Apartment{}).
			Where("tenant_id = ?", tenant.ID).
			Update("tenant_id", nil).Error
		if err != nil {
			return err
		}
		return s.tenantrepo.WithTx(tx).Delete(ctx, tenant)
	})
}

func (s *Service) AssignTenant(ctx context.Context, tenantID, apartmentID snowflake.ID) error {
	tenant, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		apartmentrepo := s.apartmentrepo.WithTx(tx)

		current, err := apartmentrepo.FindOne(ctx, "tenant_id = ?", tenant.ID)
		if err != nil {
			return err
		}
		if current != nil {
			if current.ID == apartmentID {
				return nil
			}
			return tenantdomain.ErrTenantAlreadyAssigned
		}

		apt, err := apartmentrepo.FindOne(ctx, "id = ?", apartmentID)
		if err != nil {
			return err
		}
		if apt == nil {
			return buildingdomain.ErrApartmentNotFound
		}
		if apt.TenantID != nil {
			return tenantdomain.ErrApartmentOccupied
		}

		apt.TenantID = &tenant.ID
		apt.UpdatedAt = s.clock.Now()
		if err := apartmentrepo.Save(ctx, apt); err != nil {
			return err
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			BuildingID: apt.BuildingID,
			Type:       events.EventTenantAssigned,
			Payload: events.TenantAssignmentPayload{
				TenantID:    tenant.ID.String(),
				ApartmentID: apt.ID.String(),
			}.ToMap(),
			DedupeKey: fmt.Sprintf("tenant_assigned:%s:%s", tenant.ID, apt.ID),
		})
	})
}

func (s *Service) UnassignTenant(ctx context.Context, apartmentID snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		apartmentrepo := s.apartmentrepo.WithTx(tx)

		apt, err := apartmentrepo.FindOne(ctx, "id = ?", apartmentID)
		if err != nil {
			return err
		}
		if apt == nil {
			return buildingdomain.ErrApartmentNotFound
		}
		if apt.TenantID == nil {
			return nil
		}

		tenantID := *apt.TenantID
		apt.TenantID = nil
		apt.UpdatedAt = s.clock.Now()
		if err := apartmentrepo.Save(ctx, apt); err != nil {
			return err
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			BuildingID: apt.BuildingID,
			Type:       events.EventTenantUnassigned,
			Payload: events.TenantAssignmentPayload{
				TenantID:    tenantID.String(),
				ApartmentID: apt.ID.String(),
			}.ToMap(),
			DedupeKey: fmt.Sprintf("tenant_unassigned:%s:%s:%d", tenantID, apt.ID, s.clock.Now().UnixNano()),
		})
	})
}

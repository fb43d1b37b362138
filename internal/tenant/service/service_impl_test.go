package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/domulabs/domu/internal/clock"
	"github.com/domulabs/domu/internal/events"
	tenantdomain "github.com/domulabs/domu/internal/tenant/domain"
	"github.com/domulabs/domu/pkg/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCreateTenantValidation(t *testing.T) {
	svc, _ := newTenantTestService(t)

	if _, err := svc.CreateTenant(context.Background(), tenantdomain.CreateTenantRequest{FullName: "  "}); !errors.Is(err, tenantdomain.ErrInvalidTenantName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if _, err := svc.CreateTenant(context.Background(), tenantdomain.CreateTenantRequest{FullName: "Bo Renter", Email: "not-an-email"}); !errors.Is(err, tenantdomain.ErrInvalidTenantEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}

	tenant, err := svc.CreateTenant(context.Background(), tenantdomain.CreateTenantRequest{
		FullName: " Bo Renter ",
		Email:    "bo@example.com",
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if tenant.FullName != "Bo Renter" {
		t.Fatalf("expected trimmed name, got %q", tenant.FullName)
	}
}

func TestAssignTenantEnforcesSingleApartment(t *testing.T) {
	svc, db := newTenantTestService(t)

	buildingID := insertBuilding(t, db)
	first := insertApartment(t, db, buildingID, 1)
	second := insertApartment(t, db, buildingID, 2)

	tenant, err := svc.CreateTenant(context.Background(), tenantdomain.CreateTenantRequest{FullName: "Ada Tenant"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	if err := svc.AssignTenant(context.Background(), tenant.ID, first); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// assigning to the same apartment again is a no-op
	if err := svc.AssignTenant(context.Background(), tenant.ID, first); err != nil {
		t.Fatalf("re-assign same apartment: %v", err)
	}

	err = svc.AssignTenant(context.Background(), tenant.ID, second)
	if !errors.Is(err, tenantdomain.ErrTenantAlreadyAssigned) {
		t.Fatalf("expected already assigned, got %v", err)
	}
}

func TestAssignTenantRejectsOccupiedApartment(t *testing.T) {
	svc, db := newTenantTestService(t)

	buildingID := insertBuilding(t, db)
	apartment := insertApartment(t, db, buildingID, 1)

	sitting, err := svc.CreateTenant(context.Background(), tenantdomain.CreateTenantRequest{FullName: "Sitting Tenant"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if err := svc.AssignTenant(context.Background(), sitting.ID, apartment); err != nil {
		t.Fatalf("assign: %v", err)
	}

	newcomer, err := svc.CreateTenant(context.Background(), tenantdomain.CreateTenantRequest{FullName: "New Tenant"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	err = svc.AssignTenant(context.Background(), newcomer.ID, apartment)
	if !errors.Is(err, tenantdomain.ErrApartmentOccupied) {
		t.Fatalf("expected apartment occupied, got %v", err)
	}
}

func TestUnassignTenantFreesApartment(t *testing.T) {
	svc, db := newTenantTestService(t)

	buildingID := insertBuilding(t, db)
	apartment := insertApartment(t, db, buildingID, 1)

	tenant, err := svc.CreateTenant(context.Background(), tenantdomain.CreateTenantRequest{FullName: "Moving Out"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if err := svc.AssignTenant(context.Background(), tenant.ID, apartment); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := svc.UnassignTenant(context.Background(), apartment); err != nil {
		t.Fatalf("unassign: %v", err)
	}

	var tenantID *int64
	if err := db.Raw(`SELECT tenant_id FROM apartments WHERE id = ?`, apartment).Scan(&tenantID).Error; err != nil {
		t.Fatalf("read apartment: %v", err)
	}
	if tenantID != nil {
		t.Fatalf("expected apartment freed, got tenant %v", *tenantID)
	}

	// unassigning a vacant apartment is a no-op
	if err := svc.UnassignTenant(context.Background(), apartment); err != nil {
		t.Fatalf("unassign vacant: %v", err)
	}
}

func TestDeleteTenantFreesApartment(t *testing.T) {
	svc, db := newTenantTestService(t)

	buildingID := insertBuilding(t, db)
	apartment := insertApartment(t, db, buildingID, 1)

	tenant, err := svc.CreateTenant(context.Background(), tenantdomain.CreateTenantRequest{FullName: "Leaving Forever"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if err := svc.AssignTenant(context.Background(), tenant.ID, apartment); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := svc.DeleteTenant(context.Background(), tenant.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.GetTenant(context.Background(), tenant.ID); !errors.Is(err, tenantdomain.ErrTenantNotFound) {
		t.Fatalf("expected tenant gone, got %v", err)
	}

	var tenantID *int64
	if err := db.Raw(`SELECT tenant_id FROM apartments WHERE id = ?`, apartment).Scan(&tenantID).Error; err != nil {
		t.Fatalf("read apartment: %v", err)
	}
	if tenantID != nil {
		t.Fatalf("expected apartment freed after delete, got %v", *tenantID)
	}
}

func newTenantTestService(t *testing.T) (tenantdomain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&buildingdomain.Building{},
		&buildingdomain.Apartment{},
		&tenantdomain.Tenant{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS domain_events (
			id INTEGER PRIMARY KEY,
			building_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}',
			dedupe_key TEXT,
			published BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL
		)`,
	).Error; err != nil {
		t.Fatalf("create domain_events: %v", err)
	}
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_domain_events_dedupe ON domain_events (building_id, dedupe_key) WHERE dedupe_key IS NOT NULL`,
	).Error; err != nil {
		t.Fatalf("create dedupe index: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := &Service{
		db:    db,
		log:   zap.NewNop(),
		genID: node,
		clock: clock.FixedClock{At: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},

		outbox: events.NewOutbox(db, node),

		tenantrepo:    repository.ProvideStore[tenantdomain.Tenant](db),
		apartmentrepo: repository.ProvideStore[buildingdomain.Apartment](db),
	}
	return svc, db
}

var fixtureNode = func() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}()

func insertBuilding(t *testing.T, db *gorm.DB) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	building := buildingdomain.Building{
		ID:                 fixtureNode.Generate(),
		Address:            "Tenant Test Building",
		ApartmentsCapacity: 2,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := db.Create(&building).Error; err != nil {
		t.Fatalf("create building: %v", err)
	}
	return building.ID
}

func insertApartment(t *testing.T, db *gorm.DB, buildingID snowflake.ID, number uint) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	apt := buildingdomain.Apartment{
		ID:            fixtureNode.Generate(),
		BuildingID:    buildingID,
		Number:        number,
		PaymentStatus: buildingdomain.PaymentStatusPaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&apt).Error; err != nil {
		t.Fatalf("create apartment: %v", err)
	}
	return apt.ID
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/domulabs/domu/internal/cache"
	"github.com/domulabs/domu/internal/clock"
	"github.com/domulabs/domu/internal/events"
	"github.com/domulabs/domu/pkg/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCreateBuildingProvisionsCrossProduct(t *testing.T) {
	svc, db := newTestService(t)

	building, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{
		Address:            "12 Lilac Lane",
		ApartmentsCapacity: 3,
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	if got := countRows(t, db, "utilities", "building_id = ?", building.ID); got != 4 {
		t.Fatalf("expected 4 default utilities, got %d", got)
	}
	if got := countRows(t, db, "apartments", "building_id = ?", building.ID); got != 3 {
		t.Fatalf("expected 3 apartments, got %d", got)
	}
	subs := countSubscriptions(t, db, building.ID)
	if subs != 12 {
		t.Fatalf("expected 12 subscriptions, got %d", subs)
	}

	var statuses []string
	if err := db.Raw(
		`SELECT DISTINCT s.status FROM utility_subscriptions s
		 JOIN apartments a ON a.id = s.apartment_id
		 WHERE a.building_id = ?`, building.ID,
	).Scan(&statuses).Error; err != nil {
		t.Fatalf("read statuses: %v", err)
	}
	if len(statuses) != 1 || statuses[0] != string(buildingdomain.SubscriptionStatusDisabled) {
		t.Fatalf("expected all subscriptions disabled, got %v", statuses)
	}

	if got := countRows(t, db, "domain_events", "building_id = ? AND event_type = ?", building.ID, events.EventBuildingProvisioned); got != 1 {
		t.Fatalf("expected 1 provisioned event, got %d", got)
	}
}

func TestCreateBuildingZeroCapacity(t *testing.T) {
	svc, db := newTestService(t)

	building, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{
		Address: "No Flats House",
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	if got := countRows(t, db, "utilities", "building_id = ?", building.ID); got != 4 {
		t.Fatalf("expected default utilities even with zero capacity, got %d", got)
	}
	if got := countRows(t, db, "apartments", "building_id = ?", building.ID); got != 0 {
		t.Fatalf("expected no apartments, got %d", got)
	}
	if got := countSubscriptions(t, db, building.ID); got != 0 {
		t.Fatalf("expected no subscriptions, got %d", got)
	}
}

func TestCreateBuildingRejectsBlankAddress(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{Address: "   "})
	if !errors.Is(err, buildingdomain.ErrInvalidAddress) {
		t.Fatalf("expected invalid address, got %v", err)
	}
}

func TestProvisionBuildingIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)

	building, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{
		Address:            "7 Repeat Road",
		ApartmentsCapacity: 2,
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	counts, err := svc.ProvisionBuilding(context.Background(), building.ID)
	if err != nil {
		t.Fatalf("reprovision: %v", err)
	}
	if counts.Utilities != 0 || counts.Apartments != 0 || counts.Subscriptions != 0 {
		t.Fatalf("expected no-op reprovision, got %+v", counts)
	}

	if got := countRows(t, db, "apartments", "building_id = ?", building.ID); got != 2 {
		t.Fatalf("expected 2 apartments after retry, got %d", got)
	}
	if got := countSubscriptions(t, db, building.ID); got != 8 {
		t.Fatalf("expected 8 subscriptions after retry, got %d", got)
	}
}

func TestProvisionBuildingBackfillsMissingRecords(t *testing.T) {
	svc, db := newTestService(t)

	building, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{
		Address:            "3 Patch Place",
		ApartmentsCapacity: 2,
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	// simulate a torn state: one apartment lost its subscriptions
	var apartmentID snowflake.ID
	if err := db.Raw(`SELECT id FROM apartments WHERE building_id = ? AND number = 1`, building.ID).Scan(&apartmentID).Error; err != nil {
		t.Fatalf("find apartment: %v", err)
	}
	if err := db.Exec(`DELETE FROM utility_subscriptions WHERE apartment_id = ?`, apartmentID).Error; err != nil {
		t.Fatalf("delete subscriptions: %v", err)
	}

	counts, err := svc.ProvisionBuilding(context.Background(), building.ID)
	if err != nil {
		t.Fatalf("reprovision: %v", err)
	}
	if counts.Subscriptions != 4 {
		t.Fatalf("expected 4 backfilled subscriptions, got %d", counts.Subscriptions)
	}
	if got := countSubscriptions(t, db, building.ID); got != 8 {
		t.Fatalf("expected full cross-product restored, got %d", got)
	}
}

func TestCreateUtilityFansOutToExistingApartments(t *testing.T) {
	svc, db := newTestService(t)

	building, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{
		Address:            "9 Fanout Field",
		ApartmentsCapacity: 5,
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	util, err := svc.CreateUtility(context.Background(), buildingdomain.CreateUtilityRequest{
		BuildingID:  building.ID,
		Name:        "Elevator Service",
		Kind:        buildingdomain.UtilityKindMutual,
		ChargeBasis: buildingdomain.ChargeBasisPerApartment,
		Provider:    buildingdomain.ProviderPrivate,
		TaxOrWage:   40,
	})
	if err != nil {
		t.Fatalf("create utility: %v", err)
	}

	if got := countRows(t, db, "utility_subscriptions", "utility_id = ?", util.ID); got != 5 {
		t.Fatalf("expected 5 subscriptions for new utility, got %d", got)
	}
	if got := countSubscriptions(t, db, building.ID); got != 25 {
		t.Fatalf("expected 25 total subscriptions, got %d", got)
	}
}

func TestCreateUtilityValidation(t *testing.T) {
	svc, _ := newTestService(t)

	building, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{
		Address:            "1 Strict Street",
		ApartmentsCapacity: 1,
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	cases := []struct {
		name string
		req  buildingdomain.CreateUtilityRequest
		want error
	}{
		{
			name: "blank name",
			req: buildingdomain.CreateUtilityRequest{
				BuildingID:  building.ID,
				Name:        " ",
				Kind:        buildingdomain.UtilityKindIndividual,
				ChargeBasis: buildingdomain.ChargeBasisMetered,
			},
			want: buildingdomain.ErrInvalidUtilityName,
		},
		{
			name: "bad kind",
			req: buildingdomain.CreateUtilityRequest{
				BuildingID:  building.ID,
				Name:        "Cleaning",
				Kind:        buildingdomain.UtilityKind("communal"),
				ChargeBasis: buildingdomain.ChargeBasisPerApartment,
			},
			want: buildingdomain.ErrInvalidUtilityKind,
		},
		{
			name: "bad basis",
			req: buildingdomain.CreateUtilityRequest{
				BuildingID:  building.ID,
				Name:        "Cleaning",
				Kind:        buildingdomain.UtilityKindMutual,
				ChargeBasis: buildingdomain.ChargeBasis("flat"),
			},
			want: buildingdomain.ErrInvalidChargeBasis,
		},
		{
			name: "negative rate",
			req: buildingdomain.CreateUtilityRequest{
				BuildingID:  building.ID,
				Name:        "Cleaning",
				Kind:        buildingdomain.UtilityKindMutual,
				ChargeBasis: buildingdomain.ChargeBasisPerApartment,
				TaxOrWage:   -1,
			},
			want: buildingdomain.ErrInvalidTaxOrWage,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUtility(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpdateApartmentCountersRefreshesHints(t *testing.T) {
	svc, db := newTestService(t)

	building, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{
		Address:            "5 Meter Mews",
		ApartmentsCapacity: 1,
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	apartments, err := svc.ListApartments(context.Background(), building.ID)
	if err != nil || len(apartments) != 1 {
		t.Fatalf("list apartments: %v (%d)", err, len(apartments))
	}
	apt := apartments[0]

	var coldWaterID snowflake.ID
	if err := db.Raw(
		`SELECT id FROM utilities WHERE building_id = ? AND name = ?`,
		building.ID, "Cold Water",
	).Scan(&coldWaterID).Error; err != nil {
		t.Fatalf("find utility: %v", err)
	}
	if _, err := svc.UpdateUtility(context.Background(), coldWaterID, buildingdomain.UpdateUtilityRequest{
		TaxOrWage: floatPtr(2.5),
	}); err != nil {
		t.Fatalf("set rate: %v", err)
	}

	subs, err := svc.ListSubscriptions(context.Background(), apt.ID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	var sub *buildingdomain.UtilitySubscription
	for i := range subs {
		if subs[i].UtilityID == coldWaterID {
			sub = &subs[i]
			break
		}
	}
	if sub == nil {
		t.Fatal("cold water subscription missing")
	}

	if err := svc.UpdateSubscriptionStatus(context.Background(), apt.ID, []buildingdomain.StatusUpdate{
		{SubscriptionID: sub.ID, Status: buildingdomain.SubscriptionStatusActive},
	}); err != nil {
		t.Fatalf("enable subscription: %v", err)
	}
	if err := svc.UpdateApartmentCounters(context.Background(), apt.ID, []buildingdomain.CounterUpdate{
		{SubscriptionID: sub.ID, IndexCounter: 10},
	}); err != nil {
		t.Fatalf("update counter: %v", err)
	}

	refreshed, err := svc.ListSubscriptions(context.Background(), apt.ID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	for _, got := range refreshed {
		if got.ID != sub.ID {
			continue
		}
		if got.IndexCounter != 10 {
			t.Fatalf("expected counter 10, got %d", got.IndexCounter)
		}
		if got.MonthlyPayment != 25 {
			t.Fatalf("expected payment hint 25, got %v", got.MonthlyPayment)
		}
	}
}

func TestUpdateCountersRejectsForeignSubscription(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{
		Address:            "2 Owner Street",
		ApartmentsCapacity: 1,
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}
	second, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{
		Address:            "4 Stranger Street",
		ApartmentsCapacity: 1,
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	firstApts, _ := svc.ListApartments(context.Background(), first.ID)
	secondApts, _ := svc.ListApartments(context.Background(), second.ID)
	foreignSubs, err := svc.ListSubscriptions(context.Background(), secondApts[0].ID)
	if err != nil || len(foreignSubs) == 0 {
		t.Fatalf("list foreign subscriptions: %v", err)
	}

	err = svc.UpdateApartmentCounters(context.Background(), firstApts[0].ID, []buildingdomain.CounterUpdate{
		{SubscriptionID: foreignSubs[0].ID, IndexCounter: 5},
	})
	if !errors.Is(err, buildingdomain.ErrSubscriptionUnknown) {
		t.Fatalf("expected subscription_not_found, got %v", err)
	}
}

func TestSettleAndMarkUnpaid(t *testing.T) {
	svc, _ := newTestService(t)

	building, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{
		Address:            "8 Ledger Lane",
		ApartmentsCapacity: 1,
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}
	apartments, _ := svc.ListApartments(context.Background(), building.ID)
	apt := apartments[0]

	unpaid, err := svc.MarkUnpaid(context.Background(), apt.ID, 120.50)
	if err != nil {
		t.Fatalf("mark unpaid: %v", err)
	}
	if unpaid.PaymentStatus != buildingdomain.PaymentStatusUnpaid || unpaid.Debt != 120.50 {
		t.Fatalf("unexpected state after unpaid: %s debt=%v", unpaid.PaymentStatus, unpaid.Debt)
	}

	again, err := svc.MarkUnpaid(context.Background(), apt.ID, 30)
	if err != nil {
		t.Fatalf("mark unpaid again: %v", err)
	}
	if again.Debt != 150.50 {
		t.Fatalf("expected debt to accumulate to 150.50, got %v", again.Debt)
	}

	settled, err := svc.SettlePayment(context.Background(), apt.ID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.PaymentStatus != buildingdomain.PaymentStatusPaid || settled.Debt != 0 {
		t.Fatalf("unexpected state after settle: %s debt=%v", settled.PaymentStatus, settled.Debt)
	}

	if _, err := svc.MarkUnpaid(context.Background(), apt.ID, -1); !errors.Is(err, buildingdomain.ErrInvalidDebt) {
		t.Fatalf("expected invalid debt, got %v", err)
	}
}

func TestUpdateMainMetersValidatesAndStores(t *testing.T) {
	svc, _ := newTestService(t)

	building, err := svc.CreateBuilding(context.Background(), buildingdomain.CreateBuildingRequest{
		Address:            "6 Main Street",
		ApartmentsCapacity: 1,
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	updated, err := svc.UpdateMainMeters(context.Background(), building.ID, buildingdomain.MainMeterUpdate{
		ColdWaterIndex:   int64Ptr(1043),
		GasPayment:       floatPtr(88.20),
		HeatingPayment:   floatPtr(140),
		ColdWaterPayment: floatPtr(55.5),
	})
	if err != nil {
		t.Fatalf("update meters: %v", err)
	}
	if updated.ColdWaterMainIndex != 1043 || updated.GasMainPayment != 88.20 {
		t.Fatalf("meter state not stored: %+v", updated)
	}

	_, err = svc.UpdateMainMeters(context.Background(), building.ID, buildingdomain.MainMeterUpdate{
		HotWaterIndex: int64Ptr(-3),
	})
	if !errors.Is(err, buildingdomain.ErrInvalidMainIndex) {
		t.Fatalf("expected invalid main index, got %v", err)
	}

	_, err = svc.UpdateMainMeters(context.Background(), building.ID, buildingdomain.MainMeterUpdate{
		GasPayment: floatPtr(-10),
	})
	if !errors.Is(err, buildingdomain.ErrInvalidMainPayment) {
		t.Fatalf("expected invalid main payment, got %v", err)
	}
}

func newTestService(t *testing.T) (buildingdomain.Service, *gorm.DB) {
	t.Helper()
	db := setupBuildingTestDB(t)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := &Service{
		db:    db,
		log:   zap.NewNop(),
		genID: node,
		clock: clock.FixedClock{At: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},

		outbox:    events.NewOutbox(db, node),
		buildings: cache.NoopCache[snowflake.ID, buildingdomain.Building]{},

		buildingrepo:  repository.ProvideStore[buildingdomain.Building](db),
		utilityrepo:   repository.ProvideStore[buildingdomain.Utility](db),
		apartmentrepo: repository.ProvideStore[buildingdomain.Apartment](db),
		subrepo:       repository.ProvideStore[buildingdomain.UtilitySubscription](db),
	}
	return svc, db
}

func setupBuildingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&buildingdomain.Building{},
		&buildingdomain.Utility{},
		&buildingdomain.Apartment{},
		&buildingdomain.UtilitySubscription{},
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
	return db
}

func countRows(t *testing.T, db *gorm.DB, table, where string, args ...any) int64 {
	t.Helper()
	var count int64
	if err := db.Table(table).Where(where, args...).Count(&count).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}

func countSubscriptions(t *testing.T, db *gorm.DB, buildingID snowflake.ID) int64 {
	t.Helper()
	var count int64
	err := db.Raw(
		`SELECT COUNT(*) FROM utility_subscriptions s
		 JOIN apartments a ON a.id = s.apartment_id
		 WHERE a.building_id = ?`, buildingID,
	).Scan(&count).Error
	if err != nil {
		t.Fatalf("count subscriptions: %v", err)
	}
	return count
}

func floatPtr(v float64) *float64 { return &v }

func int64Ptr(v int64) *int64 { return &v }

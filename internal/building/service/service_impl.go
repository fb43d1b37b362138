package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/domulabs/domu/internal/billing/domain"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/domulabs/domu/internal/cache"
	"github.com/domulabs/domu/internal/clock"
	"github.com/domulabs/domu/internal/events"
	"github.com/domulabs/domu/internal/observability/metrics"
	"github.com/domulabs/domu/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the provisioning engine. All creation fan-out runs inside one
// transaction per triggering event, and every create is guarded by a
// check-before-create so retries never duplicate records.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	outbox    *events.Outbox
	buildings cache.Cache[snowflake.ID, buildingdomain.Building]

	buildingrepo  repository.Repository[buildingdomain.Building]
	utilityrepo   repository.Repository[buildingdomain.Utility]
	apartmentrepo repository.Repository[buildingdomain.Apartment]
	subrepo       repository.Repository[buildingdomain.UtilitySubscription]
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Outbox    *events.Outbox
	Buildings cache.Cache[snowflake.ID, buildingdomain.Building]
}

func NewService(p ServiceParam) buildingdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("building.service"),
		genID: p.GenID,
		clock: p.Clock,

		outbox:    p.Outbox,
		buildings: p.Buildings,

		buildingrepo:  repository.ProvideStore[buildingdomain.Building](p.DB),
		utilityrepo:   repository.ProvideStore[buildingdomain.Utility](p.DB),
		apartmentrepo: repository.ProvideStore[buildingdomain.Apartment](p.DB),
		subrepo:       repository.ProvideStore[buildingdomain.UtilitySubscription](p.DB),
	}
}

func (s *Service) CreateBuilding(ctx context.Context, req buildingdomain.CreateBuildingRequest) (*buildingdomain.Building, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, buildingdomain.ErrInvalidAddress
	}

	now := s.clock.Now()
	building := buildingdomain.Building{
		ID:                 s.genID.Generate(),
		Address:            address,
		ApartmentsCapacity: req.ApartmentsCapacity,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	var counts buildingdomain.ProvisionCounts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.buildingrepo.WithTx(tx).Create(ctx, &building); err != nil {
			return err
		}
		var err error
		counts, err = s.provisionBuilding(ctx, tx, building)
		if err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			BuildingID: building.ID,
			Type:       events.EventBuildingProvisioned,
			Payload: events.BuildingProvisionedPayload{
				BuildingID:    building.ID.String(),
				Utilities:     counts.Utilities,
				Apartments:    counts.Apartments,
				Subscriptions: counts.Subscriptions,
			}.ToMap(),
			DedupeKey: fmt.Sprintf("building_provisioned:%s", building.ID),
		})
	})
	if err != nil {
		metrics.Provisioning().RecordFailure("create_building")
		return nil, err
	}

	metrics.Provisioning().RecordProvisioned(counts.Utilities, counts.Apartments, counts.Subscriptions)
	s.log.Info("building provisioned",
		zap.String("building_id", building.ID.String()),
		zap.Uint("capacity", building.ApartmentsCapacity),
		zap.Int("utilities", counts.Utilities),
		zap.Int("apartments", counts.Apartments),
		zap.Int("subscriptions", counts.Subscriptions),
	)
	return &building, nil
}

// ProvisionBuilding re-runs the provisioning fan-out for an existing
// building. Safe to retry: already-present records are skipped.
func (s *Service) ProvisionBuilding(ctx context.Context, buildingID snowflake.ID) (buildingdomain.ProvisionCounts, error) {
	var counts buildingdomain.ProvisionCounts

	building, err := s.loadBuilding(ctx, buildingID)
	if err != nil {
		return counts, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		counts, err = s.provisionBuilding(ctx, tx, *building)
		if err != nil {
			return err
		}
		if counts.Utilities == 0 && counts.Apartments == 0 && counts.Subscriptions == 0 {
			// already fully provisioned; nothing to record
			return nil
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			BuildingID: building.ID,
			Type:       events.EventBuildingProvisioned,
			Payload: events.BuildingProvisionedPayload{
				BuildingID:    building.ID.String(),
				Utilities:     counts.Utilities,
				Apartments:    counts.Apartments,
				Subscriptions: counts.Subscriptions,
			}.ToMap(),
			DedupeKey: fmt.Sprintf("building_reprovisioned:%s:%d", building.ID, s.clock.Now().UnixNano()),
		})
	})
	if err != nil {
		metrics.Provisioning().RecordFailure("provision_building")
		return buildingdomain.ProvisionCounts{}, err
	}

	metrics.Provisioning().RecordProvisioned(counts.Utilities, counts.Apartments, counts.Subscriptions)
	return counts, nil
}

// provisionBuilding creates the default utilities, the numbered apartments,
// and the full subscription cross-product, skipping records that already
// exist. Must run inside the caller's transaction.
func (s *Service) provisionBuilding(ctx context.Context, tx *gorm.DB, building buildingdomain.Building) (buildingdomain.ProvisionCounts, error) {
	var counts buildingdomain.ProvisionCounts
	now := s.clock.Now()

	utilityrepo := s.utilityrepo.WithTx(tx)
	apartmentrepo := s.apartmentrepo.WithTx(tx)

	existingUtils, err := utilityrepo.Find(ctx, "building_id = ?", building.ID)
	if err != nil {
		return counts, err
	}
	utilsByName := make(map[string]struct{}, len(existingUtils))
	for _, util := range existingUtils {
		utilsByName[util.Name] = struct{}{}
	}

	for _, spec := range buildingdomain.DefaultUtilities() {
		if _, ok := utilsByName[spec.Name]; ok {
			continue
		}
		util := buildingdomain.Utility{
			ID:          s.genID.Generate(),
			BuildingID:  building.ID,
			Name:        spec.Name,
			Kind:        spec.Kind,
			ChargeBasis: spec.ChargeBasis,
			Provider:    spec.Provider,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := utilityrepo.Create(ctx, &util); err != nil {
			return counts, err
		}
		counts.Utilities++
	}

	existingApts, err := apartmentrepo.Find(ctx, "building_id = ?", building.ID)
	if err != nil {
		return counts, err
	}
	aptsByNumber := make(map[uint]struct{}, len(existingApts))
	for _, apt := range existingApts {
		aptsByNumber[apt.Number] = struct{}{}
	}

	for number := uint(1); number <= building.ApartmentsCapacity; number++ {
		if _, ok := aptsByNumber[number]; ok {
			continue
		}
		apt := buildingdomain.Apartment{
			ID:            s.genID.Generate(),
			BuildingID:    building.ID,
			Number:        number,
			PaymentStatus: buildingdomain.PaymentStatusPaid,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := apartmentrepo.Create(ctx, &apt); err != nil {
			return counts, err
		}
		counts.Apartments++
	}

	created, err := s.ensureSubscriptionCrossProduct(ctx, tx, building.ID)
	if err != nil {
		return counts, err
	}
	counts.Subscriptions = created
	return counts, nil
}

// ensureSubscriptionCrossProduct creates the missing (apartment, utility)
// subscription rows for a building and returns how many it added.
func (s *Service) ensureSubscriptionCrossProduct(ctx context.Context, tx *gorm.DB, buildingID snowflake.ID) (int, error) {
	apartments, err := s.apartmentrepo.WithTx(tx).Find(ctx, "building_id = ?", buildingID)
	if err != nil {
		return 0, err
	}
	utilities, err := s.utilityrepo.WithTx(tx).Find(ctx, "building_id = ?", buildingID)
	if err != nil {
		return 0, err
	}
	if len(apartments) == 0 || len(utilities) == 0 {
		return 0, nil
	}

	type pairRow struct {
		ApartmentID snowflake.ID
		UtilityID   snowflake.ID
	}
	var existing []pairRow
	err = tx.WithContext(ctx).Raw(
		`SELECT s.apartment_id, s.utility_id
		 FROM utility_subscriptions s
		 JOIN apartments a ON a.id = s.apartment_id
		 WHERE a.building_id = ?`,
		buildingID,
	).Scan(&existing).Error
	if err != nil {
		return 0, err
	}
	seen := make(map[pairRow]struct{}, len(existing))
	for _, pair := range existing {
		seen[pair] = struct{}{}
	}

	now := s.clock.Now()
	var missing []buildingdomain.UtilitySubscription
	for _, apt := range apartments {
		for _, util := range utilities {
			if _, ok := seen[pairRow{ApartmentID: apt.ID, UtilityID: util.ID}]; ok {
				continue
			}
			missing = append(missing, buildingdomain.UtilitySubscription{
				ID:          s.genID.Generate(),
				ApartmentID: apt.ID,
				UtilityID:   util.ID,
				Status:      buildingdomain.SubscriptionStatusDisabled,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
	}
	if err := s.subrepo.WithTx(tx).CreateInBatches(ctx, missing, 200); err != nil {
		return 0, err
	}
	return len(missing), nil
}

func (s *Service) CreateUtility(ctx context.Context, req buildingdomain.CreateUtilityRequest) (*buildingdomain.Utility, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, buildingdomain.ErrInvalidUtilityName
	}
	if !buildingdomain.ValidKind(req.Kind) {
		return nil, buildingdomain.ErrInvalidUtilityKind
	}
	if !buildingdomain.ValidChargeBasis(req.ChargeBasis) {
		return nil, buildingdomain.ErrInvalidChargeBasis
	}
	provider := req.Provider
	if provider == "" {
		provider = buildingdomain.ProviderCity
	}
	if !buildingdomain.ValidProvider(provider) {
		return nil, buildingdomain.ErrInvalidProvider
	}
	if req.TaxOrWage < 0 {
		return nil, buildingdomain.ErrInvalidTaxOrWage
	}

	building, err := s.loadBuilding(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	util := buildingdomain.Utility{
		ID:             s.genID.Generate(),
		BuildingID:     building.ID,
		Name:           name,
		Kind:           req.Kind,
		ChargeBasis:    req.ChargeBasis,
		Provider:       provider,
		TaxOrWage:      req.TaxOrWage,
		ContractStarts: req.ContractStarts,
		ContractEnds:   req.ContractEnds,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var fanout int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.utilityrepo.WithTx(tx).Create(ctx, &util); err != nil {
			return err
		}
		var err error
		fanout, err = s.fanOutSubscriptions(ctx, tx, util)
		if err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			BuildingID: building.ID,
			Type:       events.EventUtilityProvisioned,
			Payload: events.UtilityProvisionedPayload{
				UtilityID:     util.ID.String(),
				BuildingID:    building.ID.String(),
				Subscriptions: fanout,
			}.ToMap(),
			DedupeKey: fmt.Sprintf("utility_provisioned:%s", util.ID),
		})
	})
	if err != nil {
		metrics.Provisioning().RecordFailure("create_utility")
		return nil, err
	}

	metrics.Provisioning().RecordProvisioned(1, 0, fanout)
	s.log.Info("utility provisioned",
		zap.String("utility_id", util.ID.String()),
		zap.String("building_id", building.ID.String()),
		zap.Int("subscriptions", fanout),
	)
	return &util, nil
}

// fanOutSubscriptions links a new utility to every existing apartment of its
// building. A building with no apartments yields an empty, valid fan-out.
func (s *Service) fanOutSubscriptions(ctx context.Context, tx *gorm.DB, util buildingdomain.Utility) (int, error) {
	apartments, err := s.apartmentrepo.WithTx(tx).Find(ctx, "building_id = ?", util.BuildingID)
	if err != nil {
		return 0, err
	}

	existing, err := s.subrepo.WithTx(tx).Find(ctx, "utility_id = ?", util.ID)
	if err != nil {
		return 0, err
	}
	linked := make(map[snowflake.ID]struct{}, len(existing))
	for _, sub := range existing {
		linked[sub.ApartmentID] = struct{}{}
	}

	now := s.clock.Now()
	var missing []buildingdomain.UtilitySubscription
	for _, apt := range apartments {
		if _, ok := linked[apt.ID]; ok {
			continue
		}
		missing = append(missing, buildingdomain.UtilitySubscription{
			ID:          s.genID.Generate(),
			ApartmentID: apt.ID,
			UtilityID:   util.ID,
			Status:      buildingdomain.SubscriptionStatusDisabled,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := s.subrepo.WithTx(tx).CreateInBatches(ctx, missing, 200); err != nil {
		return 0, err
	}
	return len(missing), nil
}

func (s *Service) GetBuilding(ctx context.Context, buildingID snowflake.ID) (*buildingdomain.Building, error) {
	return s.loadBuilding(ctx, buildingID)
}

func (s *Service) ListBuildings(ctx context.Context) ([]buildingdomain.Building, error) {
	return s.buildingrepo.Find(ctx)
}

func (s *Service) UpdateMainMeters(ctx context.Context, buildingID snowflake.ID, update buildingdomain.MainMeterUpdate) (*buildingdomain.Building, error) {
	building, err := s.loadBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	for _, index := range []*int64{update.ColdWaterIndex, update.HotWaterIndex, update.GasIndex, update.HeatingIndex} {
		if index != nil && *index < 0 {
			return nil, buildingdomain.ErrInvalidMainIndex
		}
	}
	for _, payment := range []*float64{update.ColdWaterPayment, update.HotWaterPayment, update.GasPayment, update.HeatingPayment} {
		if payment != nil && *payment < 0 {
			return nil, buildingdomain.ErrInvalidMainPayment
		}
	}

	if update.ColdWaterIndex != nil {
		building.ColdWaterMainIndex = *update.ColdWaterIndex
	}
	if update.HotWaterIndex != nil {
		building.HotWaterMainIndex = *update.HotWaterIndex
	}
	if update.GasIndex != nil {
		building.GasMainIndex = *update.GasIndex
	}
	if update.HeatingIndex != nil {
		building.HeatingMainIndex = *update.HeatingIndex
	}
	if update.ColdWaterPayment != nil {
		building.ColdWaterMainPayment = *update.ColdWaterPayment
	}
	if update.HotWaterPayment != nil {
		building.HotWaterMainPayment = *update.HotWaterPayment
	}
	if update.GasPayment != nil {
		building.GasMainPayment = *update.GasPayment
	}
	if update.HeatingPayment != nil {
		building.HeatingMainPayment = *update.HeatingPayment
	}
	building.UpdatedAt = s.clock.Now()

	if err := s.buildingrepo.Save(ctx, building); err != nil {
		return nil, err
	}
	s.buildings.Delete(building.ID)
	return building, nil
}

func (s *Service) UpdateUtility(ctx context.Context, utilityID snowflake.ID, req buildingdomain.UpdateUtilityRequest) (*buildingdomain.Utility, error) {
	util, err := s.utilityrepo.FindOne(ctx, "id = ?", utilityID)
	if err != nil {
		return nil, err
	}
	if util == nil {
		return nil, buildingdomain.ErrUtilityNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, buildingdomain.ErrInvalidUtilityName
		}
		util.Name = name
	}
	if req.Kind != nil {
		if !buildingdomain.ValidKind(*req.Kind) {
			return nil, buildingdomain.ErrInvalidUtilityKind
		}
		util.Kind = *req.Kind
	}
	if req.ChargeBasis != nil {
		if !buildingdomain.ValidChargeBasis(*req.ChargeBasis) {
			return nil, buildingdomain.ErrInvalidChargeBasis
		}
		util.ChargeBasis = *req.ChargeBasis
	}
	if req.Provider != nil {
		if !buildingdomain.ValidProvider(*req.Provider) {
			return nil, buildingdomain.ErrInvalidProvider
		}
		util.Provider = *req.Provider
	}
	if req.TaxOrWage != nil {
		if *req.TaxOrWage < 0 {
			return nil, buildingdomain.ErrInvalidTaxOrWage
		}
		util.TaxOrWage = *req.TaxOrWage
	}
	if req.ContractStarts != nil {
		util.ContractStarts = req.ContractStarts
	}
	if req.ContractEnds != nil {
		util.ContractEnds = req.ContractEnds
	}
	util.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.utilityrepo.WithTx(tx).Save(ctx, util); err != nil {
			return err
		}
		return s.refreshPaymentHintsForUtility(ctx, tx, *util)
	})
	if err != nil {
		return nil, err
	}
	return util, nil
}

func (s *Service) ListUtilities(ctx context.Context, buildingID snowflake.ID) ([]buildingdomain.Utility, error) {
	if _, err := s.loadBuilding(ctx, buildingID); err != nil {
		return nil, err
	}
	return s.utilityrepo.Find(ctx, "building_id = ?", buildingID)
}

func (s *Service) GetApartment(ctx context.Context, apartmentID snowflake.ID) (*buildingdomain.Apartment, error) {
	apt, err := s.apartmentrepo.FindOne(ctx, "id = ?", apartmentID)
	if err != nil {
		return nil, err
	}
	if apt == nil {
		return nil, buildingdomain.ErrApartmentNotFound
	}
	return apt, nil
}

func (s *Service) ListApartments(ctx context.Context, buildingID snowflake.ID) ([]buildingdomain.Apartment, error) {
	if _, err := s.loadBuilding(ctx, buildingID); err != nil {
		return nil, err
	}
	var apartments []buildingdomain.Apartment
	err := s.db.WithContext(ctx).
		Where("building_id = ?", buildingID).
		Order("number ASC").
		Find(&apartments).Error
	if err != nil {
		return nil, err
	}
	return apartments, nil
}

func (s *Service) ListSubscriptions(ctx context.Context, apartmentID snowflake.ID) ([]buildingdomain.UtilitySubscription, error) {
	if _, err := s.GetApartment(ctx, apartmentID); err != nil {
		return nil, err
	}
	return s.subrepo.Find(ctx, "apartment_id = ?", apartmentID)
}

func (s *Service) SetOccupancy(ctx context.Context, apartmentID snowflake.ID, occupancy uint) (*buildingdomain.Apartment, error) {
	apt, err := s.GetApartment(ctx, apartmentID)
	if err != nil {
		return nil, err
	}
	apt.Occupancy = occupancy
	apt.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.apartmentrepo.WithTx(tx).Save(ctx, apt); err != nil {
			return err
		}
		return s.refreshPaymentHintsForApartment(ctx, tx, *apt)
	})
	if err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) UpdateApartmentCounters(ctx context.Context, apartmentID snowflake.ID, updates []buildingdomain.CounterUpdate) error {
	apt, err := s.GetApartment(ctx, apartmentID)
	if err != nil {
		return err
	}
	for _, update := range updates {
		if update.IndexCounter < 0 {
			return buildingdomain.ErrInvalidCounter
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subrepo := s.subrepo.WithTx(tx)
		for _, update := range updates {
			sub, err := subrepo.FindOne(ctx, "id = ? AND apartment_id = ?", update.SubscriptionID, apartmentID)
			if err != nil {
				return err
			}
			if sub == nil {
				return buildingdomain.ErrSubscriptionUnknown
			}
			sub.IndexCounter = update.IndexCounter
			sub.UpdatedAt = s.clock.Now()
			if err := subrepo.Save(ctx, sub); err != nil {
				return err
			}
		}
		return s.refreshPaymentHintsForApartment(ctx, tx, *apt)
	})
}

func (s *Service) UpdateSubscriptionStatus(ctx context.Context, apartmentID snowflake.ID, updates []buildingdomain.StatusUpdate) error {
	apt, err := s.GetApartment(ctx, apartmentID)
	if err != nil {
		return err
	}
	for _, update := range updates {
		if update.Status != buildingdomain.SubscriptionStatusActive && update.Status != buildingdomain.SubscriptionStatusDisabled {
			return buildingdomain.ErrInvalidStatus
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subrepo := s.subrepo.WithTx(tx)
		for _, update := range updates {
			sub, err := subrepo.FindOne(ctx, "id = ? AND apartment_id = ?", update.SubscriptionID, apartmentID)
			if err != nil {
				return err
			}
			if sub == nil {
				return buildingdomain.ErrSubscriptionUnknown
			}
			sub.Status = update.Status
			sub.UpdatedAt = s.clock.Now()
			if err := subrepo.Save(ctx, sub); err != nil {
				return err
			}
		}
		return s.refreshPaymentHintsForApartment(ctx, tx, *apt)
	})
}

func (s *Service) SettlePayment(ctx context.Context, apartmentID snowflake.ID) (*buildingdomain.Apartment, error) {
	apt, err := s.GetApartment(ctx, apartmentID)
	if err != nil {
		return nil, err
	}
	apt.PaymentStatus = buildingdomain.PaymentStatusPaid
	apt.Debt = 0
	apt.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.apartmentrepo.WithTx(tx).Save(ctx, apt); err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			BuildingID: apt.BuildingID,
			Type:       events.EventPaymentSettled,
			Payload:    map[string]any{"apartment_id": apt.ID.String()},
			DedupeKey:  fmt.Sprintf("payment_settled:%s:%d", apt.ID, s.clock.Now().UnixNano()),
		})
	})
	if err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) MarkUnpaid(ctx context.Context, apartmentID snowflake.ID, amount float64) (*buildingdomain.Apartment, error) {
	if amount < 0 {
		return nil, buildingdomain.ErrInvalidDebt
	}
	apt, err := s.GetApartment(ctx, apartmentID)
	if err != nil {
		return nil, err
	}
	apt.PaymentStatus = buildingdomain.PaymentStatusUnpaid
	apt.Debt += amount
	apt.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.apartmentrepo.WithTx(tx).Save(ctx, apt); err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			BuildingID: apt.BuildingID,
			Type:       events.EventPaymentMarkedUnpaid,
			Payload:    map[string]any{"apartment_id": apt.ID.String(), "amount": amount},
			DedupeKey:  fmt.Sprintf("payment_unpaid:%s:%d", apt.ID, s.clock.Now().UnixNano()),
		})
	})
	if err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) loadBuilding(ctx context.Context, buildingID snowflake.ID) (*buildingdomain.Building, error) {
	building, err := s.buildingrepo.FindOne(ctx, "id = ?", buildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, buildingdomain.ErrBuildingNotFound
	}
	return building, nil
}

// refreshPaymentHintsForApartment recomputes the denormalized
// monthly_payment column for one apartment's subscriptions. The column is a
// display hint; billing always re-derives from live state.
func (s *Service) refreshPaymentHintsForApartment(ctx context.Context, tx *gorm.DB, apt buildingdomain.Apartment) error {
	building, err := s.buildingrepo.WithTx(tx).FindOne(ctx, "id = ?", apt.BuildingID)
	if err != nil {
		return err
	}
	if building == nil {
		return buildingdomain.ErrBuildingNotFound
	}

	subs, err := s.subrepo.WithTx(tx).Find(ctx, "apartment_id = ?", apt.ID)
	if err != nil {
		return err
	}

	subrepo := s.subrepo.WithTx(tx)
	utilityrepo := s.utilityrepo.WithTx(tx)
	for i := range subs {
		util, err := utilityrepo.FindOne(ctx, "id = ?", subs[i].UtilityID)
		if err != nil {
			return err
		}
		if util == nil {
			continue
		}
		subs[i].MonthlyPayment = billingdomain.MonthlySubscriptionCost(*building, apt, *util, subs[i])
		if err := subrepo.Save(ctx, &subs[i]); err != nil {
			return err
		}
	}
	return nil
}

// refreshPaymentHintsForUtility recomputes hints for every subscription of a
// utility after its rate or basis changed.
func (s *Service) refreshPaymentHintsForUtility(ctx context.Context, tx *gorm.DB, util buildingdomain.Utility) error {
	building, err := s.buildingrepo.WithTx(tx).FindOne(ctx, "id = ?", util.BuildingID)
	if err != nil {
		return err
	}
	if building == nil {
		return buildingdomain.ErrBuildingNotFound
	}

	subs, err := s.subrepo.WithTx(tx).Find(ctx, "utility_id = ?", util.ID)
	if err != nil {
		return err
	}

	subrepo := s.subrepo.WithTx(tx)
	apartmentrepo := s.apartmentrepo.WithTx(tx)
	for i := range subs {
		apt, err := apartmentrepo.FindOne(ctx, "id = ?", subs[i].ApartmentID)
		if err != nil {
			return err
		}
		if apt == nil {
			continue
		}
		subs[i].MonthlyPayment = billingdomain.MonthlySubscriptionCost(*building, *apt, util, subs[i])
		if err := subrepo.Save(ctx, &subs[i]); err != nil {
			return err
		}
	}
	return nil
}

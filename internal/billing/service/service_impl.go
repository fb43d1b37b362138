package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/domulabs/domu/internal/billing/domain"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/domulabs/domu/internal/cache"
	"github.com/domulabs/domu/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// buildingCacheTTL bounds staleness of the building row used for rate
// lookups. Writes through the building service invalidate eagerly.
const buildingCacheTTL = 30 * time.Second

// Service derives all monetary figures from live state at read time. The
// monthly_payment column on subscriptions is a display hint only and is
// never consulted here.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock

	buildings cache.Cache[snowflake.ID, buildingdomain.Building]
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Buildings cache.Cache[snowflake.ID, buildingdomain.Building]
}

func NewService(p ServiceParam) billingdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("billing.service"),
		clock: p.Clock,

		buildings: p.Buildings,
	}
}

// chargeRow is one subscription joined with its utility, scoped to a single
// apartment or a whole building depending on the query.
type chargeRow struct {
	SubscriptionID  snowflake.ID
	ApartmentID     snowflake.ID
	ApartmentNumber uint
	Occupancy       uint
	UtilityID       snowflake.ID
	UtilityName     string
	ChargeBasis     buildingdomain.ChargeBasis
	TaxOrWage       float64
	IndexCounter    int64
	Status          buildingdomain.SubscriptionStatus
}

func (s *Service) ApartmentMonthlyPayment(ctx context.Context, apartmentID snowflake.ID) (*billingdomain.ApartmentStatement, error) {
	apt, err := s.loadApartment(ctx, apartmentID)
	if err != nil {
		return nil, err
	}
	building, err := s.loadBuilding(ctx, apt.BuildingID)
	if err != nil {
		return nil, err
	}

	rows, err := s.listApartmentCharges(ctx, apt.ID)
	if err != nil {
		return nil, err
	}

	statement := billingdomain.ApartmentStatement{
		ApartmentID:     apt.ID,
		ApartmentNumber: apt.Number,
		PaymentStatus:   apt.PaymentStatus,
		Debt:            apt.Debt,
	}
	for _, row := range rows {
		amount := s.rowCost(*building, row)
		statement.Charges = append(statement.Charges, billingdomain.ApartmentCharge{
			SubscriptionID: row.SubscriptionID,
			UtilityID:      row.UtilityID,
			UtilityName:    row.UtilityName,
			ChargeBasis:    row.ChargeBasis,
			Status:         row.Status,
			Amount:         amount,
		})
		statement.Total += amount
	}
	return &statement, nil
}

func (s *Service) BuildingTotalExpenses(ctx context.Context, buildingID snowflake.ID) (float64, error) {
	building, err := s.loadBuilding(ctx, buildingID)
	if err != nil {
		return 0, err
	}

	rows, err := s.listBuildingCharges(ctx, building.ID)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, row := range rows {
		total += s.rowCost(*building, row)
	}
	return total, nil
}

func (s *Service) BuildingCommittedExpenses(ctx context.Context, buildingID snowflake.ID) (float64, error) {
	building, err := s.loadBuilding(ctx, buildingID)
	if err != nil {
		return 0, err
	}
	return billingdomain.CommittedExpenses(*building), nil
}

func (s *Service) ProfitLossReport(ctx context.Context, buildingID snowflake.ID) (*billingdomain.ProfitLossReport, error) {
	billed, err := s.BuildingTotalExpenses(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	committed, err := s.BuildingCommittedExpenses(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return &billingdomain.ProfitLossReport{
		BuildingID:     buildingID,
		BilledTotal:    billed,
		CommittedTotal: committed,
		Net:            billingdomain.Round2(billed - committed),
		GeneratedAt:    s.clock.Now(),
	}, nil
}

func (s *Service) BuildingReport(ctx context.Context, buildingID snowflake.ID) (*billingdomain.BuildingReport, error) {
	building, err := s.loadBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	var apartments []buildingdomain.Apartment
	err = s.db.WithContext(ctx).
		Where("building_id = ?", building.ID).
		Order("number ASC").
		Find(&apartments).Error
	if err != nil {
		return nil, err
	}

	report := billingdomain.BuildingReport{
		BuildingID:         building.ID,
		Address:            building.Address,
		ApartmentsCapacity: building.ApartmentsCapacity,
	}
	for _, apt := range apartments {
		if apt.Occupancy > 0 {
			report.OccupiedApartments++
		}
		statement, err := s.ApartmentMonthlyPayment(ctx, apt.ID)
		if err != nil {
			return nil, err
		}
		report.Statements = append(report.Statements, *statement)
	}

	profitLoss, err := s.ProfitLossReport(ctx, building.ID)
	if err != nil {
		return nil, err
	}
	report.ProfitLoss = *profitLoss
	return &report, nil
}

func (s *Service) rowCost(building buildingdomain.Building, row chargeRow) float64 {
	return billingdomain.MonthlySubscriptionCost(
		building,
		buildingdomain.Apartment{ID: row.ApartmentID, Number: row.ApartmentNumber, Occupancy: row.Occupancy},
		buildingdomain.Utility{ID: row.UtilityID, Name: row.UtilityName, ChargeBasis: row.ChargeBasis, TaxOrWage: row.TaxOrWage},
		buildingdomain.UtilitySubscription{ID: row.SubscriptionID, IndexCounter: row.IndexCounter, Status: row.Status},
	)
}

func (s *Service) listApartmentCharges(ctx context.Context, apartmentID snowflake.ID) ([]chargeRow, error) {
	var rows []chargeRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT s.id AS subscription_id, a.id AS apartment_id, a.number AS apartment_number,
		        a.occupancy, u.id AS utility_id, u.name AS utility_name,
		        u.charge_basis, u.tax_or_wage, s.index_counter, s.status
		 FROM utility_subscriptions s
		 JOIN apartments a ON a.id = s.apartment_id
		 JOIN utilities u ON u.id = s.utility_id
		 WHERE s.apartment_id = ?
		 ORDER BY u.name ASC`,
		apartmentID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) listBuildingCharges(ctx context.Context, buildingID snowflake.ID) ([]chargeRow, error) {
	var rows []chargeRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT s.id AS subscription_id, a.id AS apartment_id, a.number AS apartment_number,
		        a.occupancy, u.id AS utility_id, u.name AS utility_name,
		        u.charge_basis, u.tax_or_wage, s.index_counter, s.status
		 FROM utility_subscriptions s
		 JOIN apartments a ON a.id = s.apartment_id
		 JOIN utilities u ON u.id = s.utility_id
		 WHERE a.building_id = ?`,
		buildingID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) loadApartment(ctx context.Context, apartmentID snowflake.ID) (*buildingdomain.Apartment, error) {
	var apt buildingdomain.Apartment
	result := s.db.WithContext(ctx).Where("id = ?", apartmentID).Limit(1).Find(&apt)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, billingdomain.ErrApartmentNotFound
	}
	return &apt, nil
}

func (s *Service) loadBuilding(ctx context.Context, buildingID snowflake.ID) (*buildingdomain.Building, error) {
	if building, ok := s.buildings.Get(buildingID); ok {
		return &building, nil
	}

	var building buildingdomain.Building
	result := s.db.WithContext(ctx).Where("id = ?", buildingID).Limit(1).Find(&building)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, billingdomain.ErrBuildingNotFound
	}

	s.buildings.Set(buildingID, building, buildingCacheTTL)
	return &building, nil
}

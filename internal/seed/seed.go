package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/domulabs/domu/internal/config"
	"gorm.io/gorm"
)

const (
	defaultDemoAddress  = "1 Demo Street"
	defaultDemoCapacity = uint(4)
)

// EnsureDemoBuilding seeds one building with its default utilities,
// apartments and subscriptions for local development. Running it again is a
// no-op: the building is looked up by address.
func EnsureDemoBuilding(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if !cfg.Bootstrap.SeedDemoBuilding {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	address := strings.TrimSpace(cfg.Bootstrap.DemoAddress)
	if address == "" {
		address = defaultDemoAddress
	}
	capacity := cfg.Bootstrap.DemoCapacity
	if capacity == 0 {
		capacity = defaultDemoCapacity
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ensureDemoBuildingTx(ctx, tx, node, address, capacity)
	})
}

func ensureDemoBuildingTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, address string, capacity uint) error {
	var building buildingdomain.Building
	err := tx.WithContext(ctx).
		Where("address = ?", address).
		First(&building).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		now := time.Now().UTC()
		building = buildingdomain.Building{
			ID:                 node.Generate(),
			Address:            address,
			ApartmentsCapacity: capacity,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := tx.WithContext(ctx).Create(&building).Error; err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	utilityIDs := make([]snowflake.ID, 0, len(buildingdomain.DefaultUtilities()))
	for _, spec := range buildingdomain.DefaultUtilities() {
		var util buildingdomain.Utility
		err := tx.WithContext(ctx).
			Where("building_id = ? AND name = ?", building.ID, spec.Name).
			First(&util).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			util = buildingdomain.Utility{
				ID:          node.Generate(),
				BuildingID:  building.ID,
				Name:        spec.Name,
				Kind:        spec.Kind,
				ChargeBasis: spec.ChargeBasis,
				Provider:    spec.Provider,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.WithContext(ctx).Create(&util).Error; err != nil {
				return err
			}
		}
		utilityIDs = append(utilityIDs, util.ID)
	}

	apartmentIDs := make([]snowflake.ID, 0, capacity)
	for number := uint(1); number <= capacity; number++ {
		var apt buildingdomain.Apartment
		err := tx.WithContext(ctx).
			Where("building_id = ? AND number = ?", building.ID, number).
			First(&apt).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			apt = buildingdomain.Apartment{
				ID:            node.Generate(),
				BuildingID:    building.ID,
				Number:        number,
				PaymentStatus: buildingdomain.PaymentStatusPaid,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.WithContext(ctx).Create(&apt).Error; err != nil {
				return err
			}
		}
		apartmentIDs = append(apartmentIDs, apt.ID)
	}

	for _, apartmentID := range apartmentIDs {
		for _, utilityID := range utilityIDs {
			var sub buildingdomain.UtilitySubscription
			err := tx.WithContext(ctx).
				Where("apartment_id = ? AND utility_id = ?", apartmentID, utilityID).
				First(&sub).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			sub = buildingdomain.UtilitySubscription{
				ID:          node.Generate(),
				ApartmentID: apartmentID,
				UtilityID:   utilityID,
				Status:      buildingdomain.SubscriptionStatusDisabled,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.WithContext(ctx).Create(&sub).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/domulabs/domu/internal/billing"
	"github.com/domulabs/domu/internal/building"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/domulabs/domu/internal/cache"
	"github.com/domulabs/domu/internal/clock"
	"github.com/domulabs/domu/internal/config"
	"github.com/domulabs/domu/internal/events"
	"github.com/domulabs/domu/internal/migration"
	"github.com/domulabs/domu/internal/observability/logger"
	"github.com/domulabs/domu/internal/observability/metrics"
	"github.com/domulabs/domu/internal/observability/tracing"
	"github.com/domulabs/domu/internal/seed"
	"github.com/domulabs/domu/internal/server"
	"github.com/domulabs/domu/internal/tenant"
	"github.com/domulabs/domu/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		clock.Module,
		tracing.Module,
		metrics.Module,
		fx.Provide(events.NewOutbox),
		fx.Provide(func() cache.Cache[snowflake.ID, buildingdomain.Building] {
			return cache.NewTTLCache[snowflake.ID, buildingdomain.Building]()
		}),
		fx.Invoke(func(log *zap.Logger, cfg config.Config) {
			log.Info("starting domu",
				zap.String("version", version),
				zap.String("environment", cfg.Environment),
			)
		}),
		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			return seed.EnsureDemoBuilding(conn, cfg)
		}),
		building.Module,
		tenant.Module,
		billing.Module,
		server.Module,
	)
	app.Run()
}

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	billingdomain "github.com/domulabs/domu/internal/billing/domain"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	"github.com/domulabs/domu/internal/config"
	"github.com/domulabs/domu/internal/observability/logger"
	"github.com/domulabs/domu/internal/observability/metrics"
	"github.com/domulabs/domu/internal/observability/tracing"
	tenantdomain "github.com/domulabs/domu/internal/tenant/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

// Server holds the HTTP surface and its collaborators.
type Server struct {
	cfg config.Config
	db  *gorm.DB
	log *zap.Logger

	buildingSvc buildingdomain.Service
	tenantSvc   tenantdomain.Service
	billingSvc  billingdomain.Service

	httpMetrics *metrics.HTTPMetrics
	writeLimit  *rateLimiter
}

type ServerParam struct {
	fx.In

	Config      config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	BuildingSvc buildingdomain.Service
	TenantSvc   tenantdomain.Service
	BillingSvc  billingdomain.Service
	HTTPMetrics *metrics.HTTPMetrics
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg: p.Config,
		db:  p.DB,
		log: p.Log.Named("server"),

		buildingSvc: p.BuildingSvc,
		tenantSvc:   p.TenantSvc,
		billingSvc:  p.BillingSvc,

		httpMetrics: p.HTTPMetrics,
		writeLimit:  newRateLimiter(120, time.Minute),
	}
}

// NewEngine wires middleware in fixed order: recovery, tracing, metrics,
// then access logging.
func (s *Server) NewEngine() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware())
	engine.Use(metrics.GinMiddleware(s.httpMetrics))
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/readyz", "/metrics"},
	}))

	s.RegisterRoutes(engine)
	return engine
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)
	engine.GET("/readyz", s.Readyz)
	if s.cfg.Metrics.Enabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := engine.Group("/v1")

	buildings := v1.Group("/buildings")
	buildings.POST("", s.rateLimited(s.CreateBuilding))
	buildings.GET("", s.ListBuildings)
	buildings.GET("/:building_id", s.GetBuilding)
	buildings.POST("/:building_id/provision", s.rateLimited(s.ProvisionBuilding))
	buildings.PATCH("/:building_id/meters", s.rateLimited(s.UpdateMainMeters))
	buildings.POST("/:building_id/utilities", s.rateLimited(s.CreateUtility))
	buildings.GET("/:building_id/utilities", s.ListUtilities)
	buildings.GET("/:building_id/apartments", s.ListApartments)
	buildings.GET("/:building_id/billing/total", s.BuildingTotalExpenses)
	buildings.GET("/:building_id/billing/committed", s.BuildingCommittedExpenses)
	buildings.GET("/:building_id/billing/profit-loss", s.ProfitLossReport)
	buildings.GET("/:building_id/billing/report", s.BuildingReport)

	utilities := v1.Group("/utilities")
	utilities.PATCH("/:utility_id", s.rateLimited(s.UpdateUtility))

	apartments := v1.Group("/apartments")
	apartments.GET("/:apartment_id", s.GetApartment)
	apartments.GET("/:apartment_id/subscriptions", s.ListSubscriptions)
	apartments.PATCH("/:apartment_id/occupancy", s.rateLimited(s.SetOccupancy))
	apartments.POST("/:apartment_id/counters", s.rateLimited(s.UpdateApartmentCounters))
	apartments.POST("/:apartment_id/subscriptions/status", s.rateLimited(s.UpdateSubscriptionStatus))
	apartments.POST("/:apartment_id/payments/settle", s.rateLimited(s.SettlePayment))
	apartments.POST("/:apartment_id/payments/unpaid", s.rateLimited(s.MarkUnpaid))
	apartments.POST("/:apartment_id/tenant/unassign", s.rateLimited(s.UnassignTenant))
	apartments.GET("/:apartment_id/billing/statement", s.ApartmentStatement)

	tenants := v1.Group("/tenants")
	tenants.POST("", s.rateLimited(s.CreateTenant))
	tenants.GET("", s.ListTenants)
	tenants.GET("/:tenant_id", s.GetTenant)
	tenants.PATCH("/:tenant_id", s.rateLimited(s.UpdateTenant))
	tenants.DELETE("/:tenant_id", s.rateLimited(s.DeleteTenant))
	tenants.POST("/:tenant_id/assign", s.rateLimited(s.AssignTenant))
}

func (s *Server) rateLimited(handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.writeLimit.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": gin.H{"code": "rate_limited"}})
			return
		}
		handler(c)
	}
}

// RunHTTP starts the HTTP listener under the fx lifecycle with graceful
// shutdown on stop.
func RunHTTP(lc fx.Lifecycle, s *Server) {
	engine := s.NewEngine()

	addr := s.cfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  time.Duration(s.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				s.log.Info("http server listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.log.Info("shutting down http server")
			return srv.Shutdown(ctx)
		},
	})
}

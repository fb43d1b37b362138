package logger

import (
	"context"

	"github.com/domulabs/domu/internal/config"
	obscontext "github.com/domulabs/domu/internal/observability/context"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Module = fx.Module("logger",
	fx.Provide(NewLogger),
)

// NewLogger builds the process logger. Production gets JSON at the
// configured level; everything else gets the zap development console.
func NewLogger(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if cfg.IsProduction() {
		zapcfg := zap.NewProductionConfig()
		zapcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Logging.Level))
		log, err = zapcfg.Build()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}

	log = log.With(zap.String("service", config.ServiceName))
	zap.ReplaceGlobals(log)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}

// FromContext returns the global logger enriched with the request id and
// the active trace/span identifiers, when present.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()
	if ctx == nil {
		return log
	}

	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	if buildingID := obscontext.BuildingIDFromContext(ctx); buildingID != "" {
		log = log.With(zap.String("building_id", buildingID))
	}

	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		log = log.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return log
}

func parseLevel(level string) zapcore.Level {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

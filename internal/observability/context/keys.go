package context

import "context"

type contextKey string

const (
	requestIDKey  contextKey = "observability_request_id"
	buildingIDKey contextKey = "observability_building_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithBuildingID(ctx context.Context, buildingID string) context.Context {
	if ctx == nil || buildingID == "" {
		return ctx
	}
	return context.WithValue(ctx, buildingIDKey, buildingID)
}

func BuildingIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(buildingIDKey).(string)
	return value
}

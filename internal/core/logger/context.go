package logger

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey contextKey = "ray_id"
	orderIDKey   contextKey = "order_id"
)

// WithRequestID stores the HTTP request id so downstream logs can be correlated.
func WithRequestID(ctx context.Context, rayID string) context.Context {
	if rayID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, rayID)
}

// WithOrderID stores the order being processed.
func WithOrderID(ctx context.Context, orderID int64) context.Context {
	return context.WithValue(ctx, orderIDKey, orderID)
}

// Fields extracts the logging fields carried by ctx.
func Fields(ctx context.Context) []zap.Field {
	fields := []zap.Field{}
	if rayID, ok := ctx.Value(requestIDKey).(string); ok && rayID != "" {
		fields = append(fields, zap.String("ray_id", rayID))
	}
	if orderID, ok := ctx.Value(orderIDKey).(int64); ok && orderID != 0 {
		fields = append(fields, zap.String("order_id", strconv.FormatInt(orderID, 10)))
	}
	return fields
}

// FromContext returns the global logger decorated with the fields carried by ctx.
func FromContext(ctx context.Context) *zap.Logger {
	return Get().With(Fields(ctx)...)
}

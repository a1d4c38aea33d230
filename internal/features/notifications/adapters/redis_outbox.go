package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pronto-sync/internal/features/notifications/domain"

	"github.com/redis/go-redis/v9"
)

const pendingAlertsKey = "notifications:pending_alerts"

// RedisAlertOutbox keeps undelivered alerts in a Redis list, oldest first.
type RedisAlertOutbox struct {
	client *redis.Client
}

// NewRedisAlertOutbox creates a new RedisAlertOutbox.
func NewRedisAlertOutbox(client *redis.Client) *RedisAlertOutbox {
	return &RedisAlertOutbox{client: client}
}

// Push appends an alert to the outbox.
func (o *RedisAlertOutbox) Push(ctx context.Context, alert domain.OpsAlert) error {
	raw, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode pending alert: %w", err)
	}
	if err := o.client.RPush(ctx, pendingAlertsKey, raw).Err(); err != nil {
		return fmt.Errorf("queue pending alert: %w", err)
	}
	return nil
}

// Pop removes and returns the oldest pending alert.
func (o *RedisAlertOutbox) Pop(ctx context.Context) (*domain.OpsAlert, error) {
	raw, err := o.client.LPop(ctx, pendingAlertsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pending alert: %w", err)
	}

	var alert domain.OpsAlert
	if err := json.Unmarshal(raw, &alert); err != nil {
		return nil, fmt.Errorf("decode pending alert: %w", err)
	}
	return &alert, nil
}

package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/features/orders/domain"

	"github.com/redis/go-redis/v9"
)

const (
	indexAwaitingNumber   = "idx:awaiting_number"
	indexAwaitingShipment = "idx:awaiting_shipment"
	indexGateWatch        = "idx:gate_watch"
)

func orderKey(orderID int64) string {
	return fmt.Sprintf("order:%d", orderID)
}

func metaKey(orderID int64) string {
	return fmt.Sprintf("order:%d:meta", orderID)
}

// RedisOrderStore implements ports.OrderStore on Redis.
// Orders are JSON strings, metadata is a hash and each scheduler queue is a sorted set.
type RedisOrderStore struct {
	client *redis.Client
}

// NewRedisOrderStore creates a new RedisOrderStore.
func NewRedisOrderStore(client *redis.Client) *RedisOrderStore {
	return &RedisOrderStore{client: client}
}

// GetOrder loads the order aggregate.
func (s *RedisOrderStore) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	data, err := s.client.Get(ctx, orderKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %d", apperror.ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order %d: %w", orderID, err)
	}
	return &order, nil
}

// SaveOrder stores the order aggregate.
func (s *RedisOrderStore) SaveOrder(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order %d: %w", order.ID, err)
	}
	if err := s.client.Set(ctx, orderKey(order.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save order %d: %w", order.ID, err)
	}
	return nil
}

// GetMeta loads the metadata bag. Orders without metadata get an empty record.
func (s *RedisOrderStore) GetMeta(ctx context.Context, orderID int64) (*domain.Meta, error) {
	fields, err := s.client.HGetAll(ctx, metaKey(orderID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata of order %d: %w", orderID, err)
	}

	meta, err := domain.ParseMeta(fields)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", orderID, err)
	}
	return meta, nil
}

// SaveMeta rewrites the metadata hash and the queue memberships in one transaction.
func (s *RedisOrderStore) SaveMeta(ctx context.Context, orderID int64, meta *domain.Meta) error {
	fields := meta.Fields()
	member := strconv.FormatInt(orderID, 10)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := metaKey(orderID)
		pipe.Del(ctx, key)
		if len(fields) > 0 {
			values := make(map[string]interface{}, len(fields))
			for k, v := range fields {
				values[k] = v
			}
			pipe.HSet(ctx, key, values)
		}

		if meta.Submission != nil && !meta.Submission.Numbered() && meta.FetchRetry.Attempts < domain.MaxFetchAttempts {
			pipe.ZAdd(ctx, indexAwaitingNumber, redis.Z{Score: unixScore(meta.Submission.SyncedAt), Member: member})
		} else {
			pipe.ZRem(ctx, indexAwaitingNumber, member)
		}

		if meta.AwaitingShipment() {
			pipe.ZAdd(ctx, indexAwaitingShipment, redis.Z{Score: unixScore(meta.Shipment.TrackingStart), Member: member})
		} else {
			pipe.ZRem(ctx, indexAwaitingShipment, member)
		}

		if due, ok := meta.GateDue(); ok {
			pipe.ZAdd(ctx, indexGateWatch, redis.Z{Score: unixScore(due), Member: member})
		} else {
			pipe.ZRem(ctx, indexGateWatch, member)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save metadata of order %d: %w", orderID, err)
	}
	return nil
}

// AwaitingNumber returns submitted orders synced at or before syncedBefore, oldest first.
func (s *RedisOrderStore) AwaitingNumber(ctx context.Context, syncedBefore time.Time, limit int64) ([]int64, error) {
	return s.rangeByScore(ctx, indexAwaitingNumber, unixScore(syncedBefore), limit)
}

// AwaitingShipment returns numbered orders without a shipment, oldest tracking start first.
func (s *RedisOrderStore) AwaitingShipment(ctx context.Context, limit int64) ([]int64, error) {
	return s.rangeByScore(ctx, indexAwaitingShipment, -1, limit)
}

// GateWatch returns orders whose approval gate is due at or before dueBefore.
func (s *RedisOrderStore) GateWatch(ctx context.Context, dueBefore time.Time, limit int64) ([]int64, error) {
	return s.rangeByScore(ctx, indexGateWatch, unixScore(dueBefore), limit)
}

// rangeByScore reads ids ordered by score. A negative max means unbounded.
func (s *RedisOrderStore) rangeByScore(ctx context.Context, index string, max float64, limit int64) ([]int64, error) {
	maxArg := "+inf"
	if max >= 0 {
		maxArg = strconv.FormatFloat(max, 'f', 0, 64)
	}

	members, err := s.client.ZRangeByScore(ctx, index, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   maxArg,
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", index, err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt member %q in %s: %w", m, index, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func unixScore(t time.Time) float64 {
	return float64(t.Unix())
}

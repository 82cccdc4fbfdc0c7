package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"slotshare/internal/models"
)

// CacheService fronts Redis for hot slot reads and small string values.
// Cache misses are (nil, nil): callers fall through to the database.
type CacheService interface {
	GetSlot(ctx context.Context, tenantCode string, slotID uuid.UUID) (*models.Slot, error)
	SetSlot(ctx context.Context, slot *models.Slot, ttl time.Duration) error
	DeleteSlot(ctx context.Context, tenantCode string, slotID uuid.UUID) error
	InvalidateTenant(ctx context.Context, tenantCode string) error

	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Client() *redis.Client
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func slotKey(tenantCode string, slotID uuid.UUID) string {
	return fmt.Sprintf("slotshare:slot:%s:%s", tenantCode, slotID.String())
}

func (r *redisCacheService) GetSlot(ctx context.Context, tenantCode string, slotID uuid.UUID) (*models.Slot, error) {
	data, err := r.client.Get(ctx, slotKey(tenantCode, slotID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var slot models.Slot
	if err := json.Unmarshal(data, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *redisCacheService) SetSlot(ctx context.Context, slot *models.Slot, ttl time.Duration) error {
	data, err := json.Marshal(slot)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, slotKey(slot.TenantCode, slot.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteSlot(ctx context.Context, tenantCode string, slotID uuid.UUID) error {
	return r.client.Del(ctx, slotKey(tenantCode, slotID)).Err()
}

// InvalidateTenant drops every cached slot for a tenant. Used by code
// rotation, where the tenant part of every key changes at once.
func (r *redisCacheService) InvalidateTenant(ctx context.Context, tenantCode string) error {
	pattern := fmt.Sprintf("slotshare:slot:%s:*", tenantCode)
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Client() *redis.Client {
	return r.client
}

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/billing/backend/internal/infrastructure/config"
)

const renewalLockKeyPrefix = "billing:renewal:lock:"

// RedisRenewalLock is a per-subscription lock that keeps concurrent scheduler
// instances from charging the same subscription twice in one sweep. Uses
// SETNX with a TTL so a crashed holder releases the lock automatically.
type RedisRenewalLock struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisRenewalLock creates a renewal lock backed by a new Redis connection
func NewRedisRenewalLock(cfg config.RedisConfig, ttl time.Duration) (*RedisRenewalLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRenewalLockWithClient(client, ttl), nil
}

// NewRedisRenewalLockWithClient creates a renewal lock with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisRenewalLockWithClient(client *redis.Client, ttl time.Duration) *RedisRenewalLock {
	return &RedisRenewalLock{
		client:    client,
		keyPrefix: renewalLockKeyPrefix,
		ttl:       ttl,
	}
}

// Acquire tries to take the lock for a subscription.
// Returns true if this caller now holds it, false if another holder exists.
func (l *RedisRenewalLock) Acquire(ctx context.Context, subscriptionID uuid.UUID) (bool, error) {
	key := l.keyPrefix + subscriptionID.String()

	acquired, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire renewal lock: %w", err)
	}
	return acquired, nil
}

// Release frees the lock for a subscription
func (l *RedisRenewalLock) Release(ctx context.Context, subscriptionID uuid.UUID) error {
	key := l.keyPrefix + subscriptionID.String()

	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release renewal lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisRenewalLock) Close() error {
	return l.client.Close()
}

// InMemoryRenewalLock is a single-process renewal lock for development and
// tests. Not suitable for multi-instance deployments.
type InMemoryRenewalLock struct {
	mu      sync.Mutex
	held    map[uuid.UUID]time.Time
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewInMemoryRenewalLock creates an in-memory renewal lock
func NewInMemoryRenewalLock(ttl time.Duration) *InMemoryRenewalLock {
	return &InMemoryRenewalLock{
		held:    make(map[uuid.UUID]time.Time),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Acquire tries to take the lock for a subscription
func (l *InMemoryRenewalLock) Acquire(_ context.Context, subscriptionID uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	if expiry, ok := l.held[subscriptionID]; ok && now.Before(expiry) {
		return false, nil
	}
	l.held[subscriptionID] = now.Add(l.ttl)
	return true, nil
}

// Release frees the lock for a subscription
func (l *InMemoryRenewalLock) Release(_ context.Context, subscriptionID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, subscriptionID)
	return nil
}

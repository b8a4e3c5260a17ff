package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ErlanBelekov/shiptrack/internal/domain"
)

const keyPrefix = "shiptrack:tracking:"

// TrackingCache stores public tracking projections in Redis with a TTL.
type TrackingCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewTrackingCache(client *goredis.Client, ttl time.Duration) *TrackingCache {
	return &TrackingCache{client: client, ttl: ttl}
}

type trackingEntry struct {
	ID                 string                `json:"id"`
	RecipientAddress   string                `json:"recipientAddress"`
	PackageDescription string                `json:"packageDescription"`
	PackageWeight      float64               `json:"packageWeight"`
	Status             domain.ShipmentStatus `json:"shipmentStatus"`
	OwnerAddress       *string               `json:"ownerAddress,omitempty"`
}

// Get returns (nil, nil) on a miss.
func (c *TrackingCache) Get(ctx context.Context, id string) (*domain.TrackingView, error) {
	raw, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var e trackingEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode tracking entry: %w", err)
	}
	return &domain.TrackingView{
		ID:                 e.ID,
		RecipientAddress:   e.RecipientAddress,
		PackageDescription: e.PackageDescription,
		PackageWeight:      e.PackageWeight,
		Status:             e.Status,
		OwnerAddress:       e.OwnerAddress,
	}, nil
}

func (c *TrackingCache) Set(ctx context.Context, v *domain.TrackingView) error {
	raw, err := json.Marshal(trackingEntry{
		ID:                 v.ID,
		RecipientAddress:   v.RecipientAddress,
		PackageDescription: v.PackageDescription,
		PackageWeight:      v.PackageWeight,
		Status:             v.Status,
		OwnerAddress:       v.OwnerAddress,
	})
	if err != nil {
		return fmt.Errorf("encode tracking entry: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+v.ID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *TrackingCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping lets the cache take part in readiness checks.
func (c *TrackingCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *TrackingCache) Close() error {
	return c.client.Close()
}

// Package rediscache layers a redis snapshot cache over a readmodel
// source. Run-completion invalidation events flush the affected domains
// so the next read rebuilds from the underlying source.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/adviso/adviso/pkg/events"
	"github.com/adviso/adviso/pkg/models"
	"github.com/adviso/adviso/pkg/readmodel"
	redis "github.com/redis/go-redis/v9"
)

const (
	snapshotKey      = "adviso:readmodel:snapshot"
	contextKeyPrefix = "adviso:readmodel:context:"
	defaultTTL       = 5 * time.Minute
)

// Cache is a readmodel.Source that serves Current and BusinessContext
// from redis when possible. List and LowStock always hit the source; they
// are cheap and feed only secondary surfaces.
type Cache struct {
	source readmodel.Source
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(ctx context.Context, source readmodel.Source, addr string, logger *slog.Logger) (*Cache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to redis", "addr", addr)

	return &Cache{
		source: source,
		client: client,
		ttl:    defaultTTL,
		logger: logger.With("module", "readmodel_cache"),
	}, nil
}

func (c *Cache) List(ctx context.Context, domain string) ([]map[string]any, error) {
	return c.source.List(ctx, domain)
}

func (c *Cache) LowStock(ctx context.Context) ([]models.StockItem, error) {
	return c.source.LowStock(ctx)
}

func (c *Cache) Current(ctx context.Context) (models.BusinessSnapshot, error) {
	cached, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err == nil {
		var snapshot models.BusinessSnapshot
		if err := json.Unmarshal(cached, &snapshot); err == nil {
			return snapshot, nil
		}

		// Unreadable cache entries are treated as misses.
		c.client.Del(ctx, snapshotKey)
	}

	snapshot, err := c.source.Current(ctx)
	if err != nil {
		return models.BusinessSnapshot{}, err
	}

	if encoded, err := json.Marshal(snapshot); err == nil {
		if err := c.client.Set(ctx, snapshotKey, encoded, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "Failed to cache snapshot", "error", err)
		}
	}

	return snapshot, nil
}

func (c *Cache) BusinessContext(ctx context.Context, domain string) (map[string]any, error) {
	key := contextKeyPrefix + domain

	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var contextData map[string]any
		if err := json.Unmarshal(cached, &contextData); err == nil {
			return contextData, nil
		}

		c.client.Del(ctx, key)
	}

	contextData, err := c.source.BusinessContext(ctx, domain)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(contextData); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "Failed to cache business context", "error", err, "domain", domain)
		}
	}

	return contextData, nil
}

// Invalidate flushes the combined snapshot plus the context entries of
// the listed domains, then forwards to the source. No domains flushes
// every context entry.
func (c *Cache) Invalidate(ctx context.Context, domains ...string) error {
	keys := []string{snapshotKey}

	if len(domains) == 0 {
		pattern := contextKeyPrefix + "*"

		iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}

		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to scan context keys: %w", err)
		}
	} else {
		for _, domain := range domains {
			keys = append(keys, contextKeyPrefix+domain)
		}
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to flush cache keys: %w", err)
	}

	c.logger.InfoContext(ctx, "Read-model cache flushed", "domains", domains)

	return c.source.Invalidate(ctx, domains...)
}

// InvalidationHandler adapts the cache to the event bus so successful
// runs flush stale domains.
func (c *Cache) InvalidationHandler() func(ctx context.Context, event any) error {
	return func(ctx context.Context, event any) error {
		invalidated, ok := event.(*events.ReadModelInvalidated)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}

		return c.Invalidate(ctx, invalidated.Domains...)
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}

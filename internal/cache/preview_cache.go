package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HemantSudarshan/restock-agent/internal/config"
	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

const previewKeyPrefix = "restock:preview"

// PreviewCache stores threshold previews. Only the deterministic preview is
// ever cached; full decisions involve a reasoning call and are computed
// fresh on every invocation.
type PreviewCache interface {
	Get(ctx context.Context, query domain.InventoryQuery) (*domain.ThresholdPreview, bool, error)
	Set(ctx context.Context, query domain.InventoryQuery, preview *domain.ThresholdPreview) error
}

type redisPreviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPreviewCache struct{}

func NewPreviewCache(cfg config.CacheConfig) (PreviewCache, error) {
	if !cfg.Enabled {
		return &noopPreviewCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisPreviewCache{client: client, ttl: ttl}, nil
}

func NewNoopPreviewCache() PreviewCache {
	return &noopPreviewCache{}
}

func (c *redisPreviewCache) Get(ctx context.Context, query domain.InventoryQuery) (*domain.ThresholdPreview, bool, error) {
	payload, err := c.client.Get(ctx, buildPreviewKey(query)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var preview domain.ThresholdPreview
	if err := json.Unmarshal(payload, &preview); err != nil {
		return nil, false, fmt.Errorf("decode preview cache: %w", err)
	}
	return &preview, true, nil
}

func (c *redisPreviewCache) Set(ctx context.Context, query domain.InventoryQuery, preview *domain.ThresholdPreview) error {
	payload, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("encode preview cache: %w", err)
	}
	if err := c.client.Set(ctx, buildPreviewKey(query), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopPreviewCache) Get(ctx context.Context, query domain.InventoryQuery) (*domain.ThresholdPreview, bool, error) {
	return nil, false, nil
}

func (n *noopPreviewCache) Set(ctx context.Context, query domain.InventoryQuery, preview *domain.ThresholdPreview) error {
	return nil
}

// buildPreviewKey hashes the whole query so realtime previews with inline
// datasets key separately from mock previews of the same product.
func buildPreviewKey(query domain.InventoryQuery) string {
	payload, err := json.Marshal(query)
	if err != nil {
		return fmt.Sprintf("%s:%s", previewKeyPrefix, query.ProductID)
	}
	sum := sha1.Sum(payload)
	return fmt.Sprintf("%s:%s", previewKeyPrefix, hex.EncodeToString(sum[:]))
}

// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"purchase_backend/internal/feature/invoice/domain/entity"
	"purchase_backend/internal/feature/invoice/usecase"
)

// CachingInvoiceRepository decorates an InvoiceRepository with a Redis cache
// for dashboard stats. Every write for an owner moves that owner to a new cache generation.
type CachingInvoiceRepository struct {
	usecase.InvoiceRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.InvoiceRepository = (*CachingInvoiceRepository)(nil)

// NewCachingInvoiceRepository decorates an InvoiceRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "invoice_stats".
// A nil rdb disables caching.
func NewCachingInvoiceRepository(rdb *redis.Client, ttl time.Duration, inner usecase.InvoiceRepository, namespace string) *CachingInvoiceRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "invoice_stats"
	}
	return &CachingInvoiceRepository{
		InvoiceRepository: inner,
		rdb:               rdb,
		ttl:               ttl,
		namespace:         namespace,
	}
}

// Create stores the invoice and invalidates the owner's stats.
func (c *CachingInvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	if err := c.InvoiceRepository.Create(ctx, inv); err != nil {
		return err
	}
	c.invalidate(ctx, inv.OwnerID)
	return nil
}

// Update applies the patch and invalidates the owner's stats.
func (c *CachingInvoiceRepository) Update(ctx context.Context, ownerID, id string, patch entity.Patch) (*entity.Invoice, error) {
	inv, err := c.InvoiceRepository.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, ownerID)
	return inv, nil
}

// Delete removes the invoice and invalidates the owner's stats.
func (c *CachingInvoiceRepository) Delete(ctx context.Context, ownerID, id string) error {
	if err := c.InvoiceRepository.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	c.invalidate(ctx, ownerID)
	return nil
}

// Stats returns cached stats when present, otherwise computes and caches them.
//
// Entries are keyed by the owner's generation counter, which every write bumps.
// A Stats call that read the store before a write stores its result under the
// old generation, where no later read looks, so stale totals are never served.
func (c *CachingInvoiceRepository) Stats(ctx context.Context, ownerID string, recentLimit int) (*entity.Stats, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.InvoiceRepository.Stats(ctx, ownerID, recentLimit)
	}

	gen, err := c.generation(ctx, ownerID)
	if err != nil {
		slog.Warn("stats cache unavailable", "error", err)
		return c.InvoiceRepository.Stats(ctx, ownerID, recentLimit)
	}
	key := c.cacheKey(ownerID, gen, recentLimit)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Stats
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the store
	out, err := c.InvoiceRepository.Stats(ctx, ownerID, recentLimit)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	b, err := json.Marshal(out)
	if err != nil {
		slog.Error("failed to encode stats for cache", "owner_id", ownerID, "error", err)
		return out, nil
	}
	_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	return out, nil
}

// generation returns the owner's current cache generation ("0" before the first write).
func (c *CachingInvoiceRepository) generation(ctx context.Context, ownerID string) (string, error) {
	gen, err := c.rdb.Get(ctx, c.generationKey(ownerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// invalidate moves the owner to a new generation. Entries of older generations expire with the TTL.
func (c *CachingInvoiceRepository) invalidate(ctx context.Context, ownerID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, c.generationKey(ownerID)).Err(); err != nil {
		slog.Warn("failed to invalidate stats cache", "owner_id", ownerID, "error", err)
	}
}

func (c *CachingInvoiceRepository) cacheKey(ownerID, gen string, recentLimit int) string {
	return fmt.Sprintf("%s:%s:%s:%d", c.namespace, safe(ownerID), gen, recentLimit)
}

func (c *CachingInvoiceRepository) generationKey(ownerID string) string {
	return fmt.Sprintf("%s:%s:gen", c.namespace, safe(ownerID))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	return strings.NewReplacer(" ", "_", ":", "_", "*", "_", "?", "_", "[", "_", "]", "_").Replace(s)
}

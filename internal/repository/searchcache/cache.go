// Package searchcache caches scraped search results by query fingerprint.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crestline-labs/paperdesk/internal/db"
	"github.com/crestline-labs/paperdesk/internal/domain"
	"github.com/crestline-labs/paperdesk/internal/metrics"
)

const cacheKeyPrefix = "paperdesk:search_cache:"

// store is the consumer interface for the search cache.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache stores search results keyed by a fingerprint of the query and its
// parameters, with a fixed TTL.
type Cache struct {
	store  store
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a search result cache.
func New(s store, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: s, ttl: ttl, logger: logger}
}

// Get returns cached papers for the search parameters, or false on a miss.
// Store errors are treated as misses so a cache outage degrades to
// scraping instead of failing the request.
func (c *Cache) Get(ctx context.Context, query string, maxResults int, years domain.YearRange) ([]domain.Paper, bool) {
	key := cacheKey(query, maxResults, years)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search", zap.String("key", key), zap.Error(err))
		}
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var papers []domain.Paper
	if err := json.Unmarshal(data, &papers); err != nil {
		c.logger.Warn("Failed to parse cached search", zap.String("key", key), zap.Error(err))
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
	return papers, true
}

// Put stores search results under the parameter fingerprint. Failures are
// logged, not returned: caching is best effort.
func (c *Cache) Put(ctx context.Context, query string, maxResults int, years domain.YearRange, papers []domain.Paper) {
	key := cacheKey(query, maxResults, years)

	data, err := json.Marshal(papers)
	if err != nil {
		c.logger.Warn("Failed to encode search results", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search results", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey fingerprints the normalized query and parameters.
func cacheKey(query string, maxResults int, years domain.YearRange) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	raw := fmt.Sprintf("%s|%d|%d-%d", normalized, maxResults, years.From, years.To)
	h := sha256.Sum256([]byte(raw))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

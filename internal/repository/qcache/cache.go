// Package qcache caches finished answers in the key-value store, keyed by the
// normalized query and book context. Cache failures are never fatal: a broken
// cache degrades to recomputation.
package qcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/AdhiDevX369-work/doc-rag/internal/db"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "answer_cache:"

// store is the consumer interface for the answer cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Source is a cached provenance line.
type Source struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Entry is one cached answer.
type Entry struct {
	Query    string   `json:"query"`
	Book     string   `json:"book"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources,omitempty"`
	CachedAt int64    `json:"cached_at"`
}

// Cache is the answer cache.
type Cache struct {
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates an answer cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Get returns a cached answer for the (query, book) pair, if present and fresh.
func (c *Cache) Get(ctx context.Context, query, book string) (Entry, bool) {
	data, err := c.store.Get(ctx, c.key(query, book))
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read answer cache", zap.Error(err))
		}
		c.incCache("miss")
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Corrupt answer cache entry", zap.Error(err))
		c.incCache("miss")
		return Entry{}, false
	}

	c.incCache("hit")
	return e, true
}

// Put stores an answer. Errors are logged and swallowed.
func (c *Cache) Put(ctx context.Context, query, book string, e Entry) {
	e.Query = query
	e.Book = book
	e.CachedAt = time.Now().Unix()

	data, err := json.Marshal(e)
	if err != nil {
		c.logger.Warn("Failed to encode answer cache entry", zap.Error(err))
		return
	}

	if err := c.store.SetWithTTL(ctx, c.key(query, book), data, c.ttl); err != nil {
		c.logger.Warn("Failed to write answer cache", zap.Error(err))
	}
}

func (c *Cache) key(query, book string) string {
	normalized := strings.ToLower(strings.TrimSpace(query)) + "|" + strings.ToLower(strings.TrimSpace(book))
	h := sha256.Sum256([]byte(normalized))
	return cacheKeyPrefix + hex.EncodeToString(h[:8])
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/blogspace/patientzero/internal/metrics"
)

// CachedClassifier memoises another Classifier per normalised profile for TTL.
// Errors are not cached.
type CachedClassifier struct {
	next  Classifier
	ttl   time.Duration
	cache *ristretto.Cache[string, []string]
}

// NewCachedClassifier wraps next with a bounded in-memory cache.
func NewCachedClassifier(next Classifier, ttl time.Duration) (*CachedClassifier, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []string]{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create classifier cache: %w", err)
	}
	return &CachedClassifier{next: next, ttl: ttl, cache: cache}, nil
}

func (c *CachedClassifier) Classify(ctx context.Context, profile Profile) ([]string, error) {
	key := profileKey(profile)
	if categories, ok := c.cache.Get(key); ok {
		metrics.ClassifierRequests.WithLabelValues("cache", "cache_hit").Inc()
		return append([]string(nil), categories...), nil
	}

	categories, err := c.next.Classify(ctx, profile)
	if err != nil {
		return nil, err
	}

	c.cache.SetWithTTL(key, append([]string(nil), categories...), 1, c.ttl)
	c.cache.Wait()
	return categories, nil
}

// Close releases the cache's background goroutines.
func (c *CachedClassifier) Close() {
	c.cache.Close()
}

// profileKey ignores case, surrounding space and list order.
func profileKey(p Profile) string {
	norm := func(list []string) string {
		out := make([]string, 0, len(list))
		for _, s := range list {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		sort.Strings(out)
		return strings.Join(out, "\x1f")
	}
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(p.CurrentStatus)),
		norm(p.Conditions),
		norm(p.Goals),
	}, "\x1e")
}

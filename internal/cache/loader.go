package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/barfriedman1/FDA-drug-recall/internal/categorize"
	"github.com/barfriedman1/FDA-drug-recall/internal/metrics"
	"github.com/barfriedman1/FDA-drug-recall/internal/openfda"
	"github.com/barfriedman1/FDA-drug-recall/internal/recall"
)

type Fetcher interface {
	Fetch(ctx context.Context) (*openfda.FetchResult, error)
}

// Snapshot is the categorized dataset as served from the cache.
type Snapshot struct {
	Records     []recall.Record
	FetchedAt   time.Time
	LastUpdated string
	Total       int
}

// Loader fills the cache from a Fetcher at most once per ttl, or once per
// process when ttl is zero. Concurrent loads share a single fetch.
type Loader struct {
	cache   *Cache
	fetcher Fetcher
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
}

func NewLoader(c *Cache, f Fetcher, ttl time.Duration, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cache: c, fetcher: f, ttl: ttl, logger: logger}
}

// Load returns the cached dataset, fetching it first when the cache is empty,
// expired, or force is set.
func (l *Loader) Load(ctx context.Context, force bool) (*Snapshot, error) {
	if force {
		if err := l.cache.Invalidate(); err != nil {
			return nil, fmt.Errorf("invalidating cache: %w", err)
		}
	}

	if !l.cache.NeedsRefresh(l.ttl) {
		metrics.CacheLoads.WithLabelValues("hit").Inc()
		return l.snapshot()
	}

	_, err, shared := l.group.Do("recalls", func() (interface{}, error) {
		return nil, l.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.logger.Debug("joined in-flight fetch")
	}
	metrics.CacheLoads.WithLabelValues("fetch").Inc()
	return l.snapshot()
}

func (l *Loader) refresh(ctx context.Context) error {
	res, err := l.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	changed := categorize.Apply(res.Records)
	l.logger.Debug("categorized reasons", "records", len(res.Records), "rewritten", changed)
	recordCategories(res.Records)

	if err := l.cache.Replace(res.Records); err != nil {
		return fmt.Errorf("caching recalls: %w", err)
	}
	if err := l.cache.SetMeta("last_updated", res.Meta.LastUpdated); err != nil {
		return fmt.Errorf("caching meta: %w", err)
	}
	if err := l.cache.SetMeta("total", strconv.Itoa(res.Meta.Total)); err != nil {
		return fmt.Errorf("caching meta: %w", err)
	}
	return nil
}

func (l *Loader) snapshot() (*Snapshot, error) {
	records, err := l.cache.Records(QueryOpts{})
	if err != nil {
		return nil, err
	}
	s := &Snapshot{Records: records}
	s.FetchedAt, _ = l.cache.LastRefresh()
	s.LastUpdated, _ = l.cache.Meta("last_updated")
	if v, err := l.cache.Meta("total"); err == nil {
		s.Total, _ = strconv.Atoi(v)
	}
	return s, nil
}

func recordCategories(records []recall.Record) {
	counts := make(map[string]int)
	for _, r := range records {
		cat := r.Reason
		if !categorize.IsCanonical(cat) {
			cat = "Other"
		}
		counts[cat]++
	}
	metrics.CategoryRecords.Reset()
	for cat, n := range counts {
		metrics.CategoryRecords.WithLabelValues(cat).Set(float64(n))
	}
}

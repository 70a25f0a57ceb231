// Package deals maintains the curated deals cache: a small set of current
// discounts refreshed periodically, mirrored to a file, and served with a
// tiered fallback when refresh fails.
package deals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/rpillai/dealwatch/internal/metrics"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Curation quotas: slots reserved per bucket before the remainder is filled
// by highest discount. Older titles are recognized by their low Steam app id.
const (
	popularQuota    = 3
	classicQuota    = 2
	deepQuota       = 2
	classicMaxAppID = 500000
	deepDiscountMin = 50
)

type Config struct {
	MinDiscountPercent int
	TargetSize         int
	StaleCeiling       time.Duration
	CacheFile          string
	WatchlistFile      string
}

// Cache owns the Deal collection's lifecycle: load at init, replace
// wholesale on refresh, persist on write. Reads never block on a refresh.
type Cache struct {
	source    domain.PriceSource
	cfg       Config
	watch     []domain.GameRef
	emergency []domain.GameRef
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	mu          sync.RWMutex
	deals       []domain.GamePrice
	lastUpdated time.Time
}

type snapshot struct {
	LastUpdated time.Time          `json:"last_updated"`
	Deals       []domain.GamePrice `json:"deals"`
}

func New(source domain.PriceSource, cfg Config, logger *zap.Logger, m *metrics.Metrics) (*Cache, error) {
	watch, err := LoadWatchlist(cfg.WatchlistFile)
	if err != nil {
		return nil, err
	}

	c := &Cache{
		source:    source,
		cfg:       cfg,
		watch:     watch,
		emergency: EmergencyRefs(),
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}

	if snap, err := c.readFile(); err == nil {
		c.deals = snap.Deals
		c.lastUpdated = snap.LastUpdated
		c.metrics.SetDealsCacheSize(len(snap.Deals))
		logger.Info(
			"deals cache loaded from file",
			zap.Int("deals", len(snap.Deals)),
			zap.Time("last_updated", snap.LastUpdated),
		)
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("deals cache file unreadable, starting empty", zap.String("path", cfg.CacheFile), zap.Error(err))
	}

	return c, nil
}

// Refresh rebuilds the cache from the watch-list plus whatever the store
// front page features right now, and replaces the previous set atomically.
// A failed featured listing alone is non-fatal; only when every source
// errored and nothing qualified does Refresh fail, leaving cache and file
// untouched.
func (c *Cache) Refresh(ctx context.Context) error {
	refs := make([]domain.GameRef, 0, len(c.watch)+40)
	refs = append(refs, c.watch...)

	var errs []error
	featured, err := c.source.FeaturedRefs(ctx)
	if err != nil {
		c.logger.Warn("featured listing failed, refreshing from watch-list only", zap.Error(err))
		errs = append(errs, fmt.Errorf("featured: %w", err))
	} else {
		refs = append(refs, featured...)
	}

	// The store resolves corrected ids to a canonical ref, so two candidate
	// ids can land on the same title; keep the higher discount.
	best := make(map[domain.GameRef]domain.GamePrice)
	checked := make(map[domain.GameRef]struct{})
	for _, ref := range refs {
		if _, done := checked[ref]; done {
			continue
		}
		checked[ref] = struct{}{}

		price, err := c.source.GetPrice(ctx, ref)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", ref, err))
			continue
		}
		if price.DiscountPercent < c.cfg.MinDiscountPercent {
			continue
		}
		if existing, ok := best[price.Ref]; ok && existing.DiscountPercent >= price.DiscountPercent {
			continue
		}
		best[price.Ref] = *price
	}

	if len(best) == 0 && len(errs) > 0 {
		return fmt.Errorf("%w: deals refresh produced nothing: %v", domain.ErrUnavailable, multierr.Combine(errs...))
	}

	candidates := make([]domain.GamePrice, 0, len(best))
	for _, price := range best {
		candidates = append(candidates, price)
	}
	curated := curate(candidates, refSet(c.watch), c.cfg.TargetSize)
	updatedAt := c.now().UTC()

	c.mu.Lock()
	c.deals = curated
	c.lastUpdated = updatedAt
	c.mu.Unlock()
	c.metrics.SetDealsCacheSize(len(curated))

	if err := c.writeFile(snapshot{LastUpdated: updatedAt, Deals: curated}); err != nil {
		c.logger.Warn("failed to persist deals cache", zap.String("path", c.cfg.CacheFile), zap.Error(err))
	}

	c.logger.Info(
		"deals cache refreshed",
		zap.Int("candidates", len(candidates)),
		zap.Int("kept", len(curated)),
		zap.Int("lookup_errors", len(errs)),
	)
	return nil
}

// Current returns the cached deals when they are younger than the staleness
// ceiling. Otherwise it walks the fallback chain: the on-disk snapshot, a
// live re-check of the emergency list, and finally an unavailable error.
// An empty result is always an error, never "no deals".
func (c *Cache) Current(ctx context.Context) ([]domain.GamePrice, error) {
	c.mu.RLock()
	deals := append([]domain.GamePrice(nil), c.deals...)
	lastUpdated := c.lastUpdated
	c.mu.RUnlock()

	if len(deals) > 0 && c.now().Sub(lastUpdated) <= c.cfg.StaleCeiling {
		return deals, nil
	}

	if snap, err := c.readFile(); err == nil &&
		len(snap.Deals) > 0 && c.now().Sub(snap.LastUpdated) <= c.cfg.StaleCeiling {
		c.mu.Lock()
		c.deals = snap.Deals
		c.lastUpdated = snap.LastUpdated
		c.mu.Unlock()
		c.metrics.IncCacheFallback("disk")
		c.logger.Info("deals served from disk snapshot", zap.Time("last_updated", snap.LastUpdated))
		return append([]domain.GamePrice(nil), snap.Deals...), nil
	}

	if emergency := c.checkEmergency(ctx); len(emergency) > 0 {
		c.metrics.IncCacheFallback("emergency")
		c.logger.Warn("deals served from emergency re-check", zap.Int("deals", len(emergency)))
		return emergency, nil
	}

	c.metrics.IncCacheFallback("unavailable")
	return nil, fmt.Errorf("%w: no usable deals cache", domain.ErrUnavailable)
}

// LastUpdated reports the age stamp of the in-memory set; zero when empty.
func (c *Cache) LastUpdated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdated
}

// checkEmergency re-prices the emergency list live. The result is returned
// to the caller but never adopted as the cache: it bypassed curation and
// would reset the staleness clock without a real refresh.
func (c *Cache) checkEmergency(ctx context.Context) []domain.GamePrice {
	found := make([]domain.GamePrice, 0, c.cfg.TargetSize)
	for _, ref := range c.emergency {
		if len(found) >= c.cfg.TargetSize {
			break
		}
		price, err := c.source.GetPrice(ctx, ref)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				c.logger.Warn("emergency re-check failed", zap.String("game_ref", ref.String()), zap.Error(err))
			}
			continue
		}
		if price.DiscountPercent < c.cfg.MinDiscountPercent {
			continue
		}
		found = append(found, *price)
	}
	return found
}

// curate assembles the final list by quota: a few watch-list regulars, a
// couple of older titles, a couple of deep discounts, then the highest
// remaining discounts until the target size is reached.
func curate(candidates []domain.GamePrice, watch map[domain.GameRef]struct{}, target int) []domain.GamePrice {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DiscountPercent != candidates[j].DiscountPercent {
			return candidates[i].DiscountPercent > candidates[j].DiscountPercent
		}
		return candidates[i].Ref.ID < candidates[j].Ref.ID
	})

	picked := make([]domain.GamePrice, 0, target)
	used := make(map[domain.GameRef]struct{})
	take := func(quota int, keep func(domain.GamePrice) bool) {
		for _, candidate := range candidates {
			if quota == 0 || len(picked) >= target {
				return
			}
			if _, dup := used[candidate.Ref]; dup || !keep(candidate) {
				continue
			}
			used[candidate.Ref] = struct{}{}
			picked = append(picked, candidate)
			quota--
		}
	}

	take(popularQuota, func(p domain.GamePrice) bool {
		_, ok := watch[p.Ref]
		return ok
	})
	take(classicQuota, isClassic)
	take(deepQuota, func(p domain.GamePrice) bool {
		return p.DiscountPercent >= deepDiscountMin
	})
	take(target-len(picked), func(domain.GamePrice) bool { return true })
	return picked
}

func isClassic(p domain.GamePrice) bool {
	if p.Ref.Platform != domain.PlatformSteam {
		return false
	}
	id, err := strconv.Atoi(p.Ref.ID)
	return err == nil && id < classicMaxAppID
}

func refSet(refs []domain.GameRef) map[domain.GameRef]struct{} {
	set := make(map[domain.GameRef]struct{}, len(refs))
	for _, ref := range refs {
		set[ref] = struct{}{}
	}
	return set
}

func (c *Cache) readFile() (snapshot, error) {
	data, err := os.ReadFile(c.cfg.CacheFile)
	if err != nil {
		return snapshot{}, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return snapshot{}, fmt.Errorf("parse cache file: %w", err)
	}
	return snap, nil
}

// writeFile replaces the cache file wholesale via a temp file and rename, so
// a reader never sees a half-written snapshot.
func (c *Cache) writeFile(snap snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.cfg.CacheFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.cfg.CacheFile)
}

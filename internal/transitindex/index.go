// Package transitindex memoizes route details by id and indexes the stops
// of every cached route for bounding box lookups.
package transitindex

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/tidwall/rtree"
	"otpviewer.org/internal/appconf"
	"otpviewer.org/internal/clock"
	"otpviewer.org/internal/otp"
	"otpviewer.org/internal/viewer"
)

const (
	DefaultSize = 500
	DefaultTTL  = 10 * time.Minute

	summariesKey = "routes"
)

// RouteLoader fetches routes from OTP.
type RouteLoader interface {
	Route(ctx context.Context, routeID string) (*otp.Route, error)
	Routes(ctx context.Context) ([]otp.Route, error)
}

// Observer is told about every cache lookup.
type Observer interface {
	ObserveCacheLookup(cache string, hit bool)
}

// Config sizes the route cache. Zero values fall back to the defaults.
type Config struct {
	Size   int
	TTL    time.Duration
	Viewer appconf.ViewerConfig
	Clock  clock.Clock
}

// Index caches route details and the stops of every cached route.
// It is safe for concurrent use.
type Index struct {
	loader    RouteLoader
	viewerCfg appconf.ViewerConfig
	observer  Observer

	routes    gcache.Cache
	summaries gcache.Cache

	mu    sync.RWMutex
	tree  rtree.RTreeG[string]
	stops map[string]viewer.PatternStop
}

// New creates an empty index backed by loader. observer may be nil.
func New(loader RouteLoader, cfg Config, observer Observer) *Index {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	return &Index{
		loader:    loader,
		viewerCfg: cfg.Viewer,
		observer:  observer,
		routes:    gcache.New(cfg.Size).LRU().Expiration(cfg.TTL).Clock(cfg.Clock).Build(),
		summaries: gcache.New(1).Simple().Expiration(cfg.TTL).Clock(cfg.Clock).Build(),
		stops:     make(map[string]viewer.PatternStop),
	}
}

func (ix *Index) observe(cache string, hit bool) {
	if ix.observer != nil {
		ix.observer.ObserveCacheLookup(cache, hit)
	}
}

// RouteDetail returns the cached detail of a route, loading it on a miss.
func (ix *Index) RouteDetail(ctx context.Context, routeID string) (viewer.RouteDetail, error) {
	if v, err := ix.routes.Get(routeID); err == nil {
		ix.observe("route", true)
		return v.(viewer.RouteDetail), nil
	} else if !errors.Is(err, gcache.KeyNotFoundError) {
		return viewer.RouteDetail{}, fmt.Errorf("route cache: %w", err)
	}
	ix.observe("route", false)

	route, err := ix.loader.Route(ctx, routeID)
	if err != nil {
		return viewer.RouteDetail{}, err
	}
	detail := viewer.BuildRouteDetail(*route, ix.viewerCfg)
	if err := ix.routes.Set(routeID, detail); err != nil {
		return viewer.RouteDetail{}, fmt.Errorf("route cache: %w", err)
	}
	ix.indexStops(detail)
	return detail, nil
}

// FindPatternsForRoute returns the deduplicated patterns of a route keyed by id.
func (ix *Index) FindPatternsForRoute(ctx context.Context, routeID string) (map[string]viewer.RoutePattern, error) {
	detail, err := ix.RouteDetail(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return detail.Patterns, nil
}

// RouteSummaries returns every route keyed by id.
func (ix *Index) RouteSummaries(ctx context.Context) (map[string]viewer.RouteSummary, error) {
	if v, err := ix.summaries.Get(summariesKey); err == nil {
		ix.observe("routes", true)
		return v.(map[string]viewer.RouteSummary), nil
	}
	ix.observe("routes", false)

	routes, err := ix.loader.Routes(ctx)
	if err != nil {
		return nil, err
	}
	summaries := viewer.BuildRouteSummaries(routes, ix.viewerCfg)
	if err := ix.summaries.Set(summariesKey, summaries); err != nil {
		return nil, fmt.Errorf("routes cache: %w", err)
	}
	return summaries, nil
}

// Invalidate drops a cached route. Its stops stay indexed.
func (ix *Index) Invalidate(routeID string) bool {
	return ix.routes.Remove(routeID)
}

func (ix *Index) indexStops(detail viewer.RouteDetail) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, p := range detail.Patterns {
		for _, s := range p.Stops {
			if _, ok := ix.stops[s.ID]; ok {
				continue
			}
			ix.stops[s.ID] = s
			pt := [2]float64{s.Lon, s.Lat}
			ix.tree.Insert(pt, pt, s.ID)
		}
	}
}

// Stop returns an indexed stop.
func (ix *Index) Stop(stopID string) (viewer.PatternStop, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	s, ok := ix.stops[stopID]
	return s, ok
}

// StopsWithinBounds returns the indexed stops inside b, ordered by id.
func (ix *Index) StopsWithinBounds(b viewer.Bounds) []viewer.PatternStop {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := []viewer.PatternStop{}
	ix.tree.Search(
		[2]float64{b.MinLon, b.MinLat},
		[2]float64{b.MaxLon, b.MaxLat},
		func(_, _ [2]float64, id string) bool {
			out = append(out, ix.stops[id])
			return true
		},
	)
	slices.SortFunc(out, func(a, b viewer.PatternStop) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Stats describes the index contents.
// Stats describes the cache contents for the debug page.
type Stats struct {
	CachedRoutes []string `json:"cachedRoutes"`
	IndexedStops int      `json:"indexedStops"`
	HitCount     uint64   `json:"hitCount"`
	MissCount    uint64   `json:"missCount"`
}

// Stats reports the cached route ids, the indexed stop count and the
// cache hit ratio counters.
func (ix *Index) Stats() Stats {
	keys := make([]string, 0)
	for _, k := range ix.routes.Keys(true) {
		if s, ok := k.(string); ok {
			keys = append(keys, s)
		}
	}
	slices.Sort(keys)

	ix.mu.RLock()
	n := len(ix.stops)
	ix.mu.RUnlock()

	return Stats{
		CachedRoutes: keys,
		IndexedStops: n,
		HitCount:     ix.routes.HitCount(),
		MissCount:    ix.routes.MissCount(),
	}
}

// Snapshot returns the cached route details keyed by id.
func (ix *Index) Snapshot() map[string]viewer.RouteDetail {
	all := ix.routes.GetALL(true)
	out := make(map[string]viewer.RouteDetail, len(all))
	for k, v := range all {
		id, ok := k.(string)
		if !ok {
			continue
		}
		if d, ok := v.(viewer.RouteDetail); ok {
			out[id] = d
		}
	}
	return out
}

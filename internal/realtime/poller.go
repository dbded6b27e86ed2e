// Package realtime keeps the vehicle positions of recently viewed routes
// fresh and hands every refresh to a publisher.
package realtime

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"otpviewer.org/internal/clock"
	"otpviewer.org/internal/logging"
	"otpviewer.org/internal/otp"
	"otpviewer.org/internal/viewer"
)

const (
	DefaultInterval    = 30 * time.Second
	DefaultIdleTimeout = 10 * time.Minute
)

// PositionSource loads the vehicle positions of a route.
type PositionSource interface {
	VehiclePositionsForRoute(ctx context.Context, routeID string) ([]otp.Pattern, error)
}

// Publisher fans a refreshed batch out to other consumers.
type Publisher interface {
	PublishVehicles(batch VehicleBatch) error
}

// Observer records poll outcomes and the number of watched routes.
type Observer interface {
	ObserveVehiclePoll(err error, published bool)
	SetWatchedRoutes(n int)
}

// VehicleBatch is the result of one refresh of a route.
type VehicleBatch struct {
	RouteID   string                   `json:"routeId"`
	FetchedAt time.Time                `json:"fetchedAt"`
	Vehicles  []viewer.VehiclePosition `json:"vehicles"`
}

// Config tunes the poller. Zero values fall back to the defaults.
type Config struct {
	Interval    time.Duration
	IdleTimeout time.Duration
	Clock       clock.Clock
	Logger      *slog.Logger
	Publisher   Publisher
	Observer    Observer
}

// Poller refreshes the vehicles of every route requested within the idle
// timeout and keeps the latest batch of each in memory.
type Poller struct {
	source      PositionSource
	publisher   Publisher
	observer    Observer
	clock       clock.Clock
	logger      *slog.Logger
	interval    time.Duration
	idleTimeout time.Duration
	stale       *viewer.StaleDetector

	mu      sync.Mutex
	watched map[string]time.Time // route id -> last request
	latest  map[string]VehicleBatch

	startOnce sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewPoller creates a stopped poller; call Start to begin polling.
func NewPoller(source PositionSource, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Poller{
		source:      source,
		publisher:   cfg.Publisher,
		observer:    cfg.Observer,
		clock:       cfg.Clock,
		logger:      cfg.Logger.With(slog.String("component", "vehicle_poller")),
		interval:    cfg.Interval,
		idleTimeout: cfg.IdleTimeout,
		stale:       viewer.NewStaleDetector(),
		watched:     make(map[string]time.Time),
		latest:      make(map[string]VehicleBatch),
	}
}

// Vehicles returns the current vehicles of a route and starts watching it.
// A batch younger than the refresh interval is served from memory.
func (p *Poller) Vehicles(ctx context.Context, routeID string) (VehicleBatch, error) {
	now := p.clock.Now()

	p.mu.Lock()
	p.watched[routeID] = now
	batch, ok := p.latest[routeID]
	n := len(p.watched)
	p.mu.Unlock()
	p.reportWatched(n)

	if ok && now.Sub(batch.FetchedAt) < p.interval {
		return batch, nil
	}
	return p.Refresh(ctx, routeID)
}

// Refresh fetches the vehicles of a route, flags stale positions, stores the
// batch and publishes it.
func (p *Poller) Refresh(ctx context.Context, routeID string) (VehicleBatch, error) {
	patterns, err := p.source.VehiclePositionsForRoute(ctx, routeID)
	if err != nil {
		if p.observer != nil {
			p.observer.ObserveVehiclePoll(err, false)
		}
		return VehicleBatch{}, err
	}

	now := p.clock.Now()
	batch := VehicleBatch{
		RouteID:   routeID,
		FetchedAt: now,
		Vehicles:  viewer.MarkStaleVehicles(viewer.FlattenVehiclePositions(patterns), routeID, p.stale, now),
	}

	p.mu.Lock()
	p.latest[routeID] = batch
	p.mu.Unlock()

	published := false
	if p.publisher != nil {
		if err := p.publisher.PublishVehicles(batch); err != nil {
			logging.LogError(p.logger, "failed to publish vehicles", err, slog.String("route_id", routeID))
		} else {
			published = true
		}
	}
	if p.observer != nil {
		p.observer.ObserveVehiclePoll(nil, published)
	}
	return batch, nil
}

// PollOnce forgets routes nobody asked for within the idle timeout and
// refreshes the rest.
func (p *Poller) PollOnce(ctx context.Context) {
	now := p.clock.Now()

	p.mu.Lock()
	for id, last := range p.watched {
		if now.Sub(last) > p.idleTimeout {
			delete(p.watched, id)
			delete(p.latest, id)
		}
	}
	routes := slices.Sorted(maps.Keys(p.watched))
	p.mu.Unlock()
	p.reportWatched(len(routes))

	for _, id := range routes {
		if ctx.Err() != nil {
			return
		}
		if _, err := p.Refresh(ctx, id); err != nil {
			logging.LogError(p.logger, "failed to refresh vehicle positions", err, slog.String("route_id", id))
		}
	}
}

// WatchedRoutes lists the routes being refreshed.
func (p *Poller) WatchedRoutes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Sorted(maps.Keys(p.watched))
}

// Batches returns a copy of the latest batch of every watched route.
func (p *Poller) Batches() map[string]VehicleBatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.latest)
}

// Start refreshes watched routes every interval until Stop is called or ctx ends.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		p.cancel = cancel
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			ticker := time.NewTicker(p.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					p.PollOnce(ctx)
				case <-ctx.Done():
					return
				}
			}
		}()
		logging.LogOperation(p.logger, "vehicle_poller_started", slog.Duration("interval", p.interval))
	})
}

// Stop ends the polling loop and waits for it to exit.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Poller) reportWatched(n int) {
	if p.observer != nil {
		p.observer.SetWatchedRoutes(n)
	}
}

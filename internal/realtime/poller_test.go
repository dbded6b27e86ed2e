package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"otpviewer.org/internal/clock"
	"otpviewer.org/internal/otp"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
	// lastUpdated offsets relative to testNow, per vehicle
	ages map[string]time.Duration
}

func (f *fakeSource) VehiclePositionsForRoute(_ context.Context, routeID string) ([]otp.Pattern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[routeID]++
	if f.err != nil {
		return nil, f.err
	}
	p := otp.Pattern{ID: routeID + ":0"}
	for id, age := range f.ages {
		p.VehiclePositions = append(p.VehiclePositions, &otp.VehiclePosition{
			VehicleID:   id,
			LastUpdated: testNow.Add(-age).Unix(),
		})
	}
	return []otp.Pattern{p}, nil
}

func (f *fakeSource) count(routeID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[routeID]
}

type fakePublisher struct {
	mu      sync.Mutex
	batches []VehicleBatch
	err     error
}

func (f *fakePublisher) PublishVehicles(batch VehicleBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batch)
	return nil
}

type fakeObserver struct {
	mu        sync.Mutex
	polls     int
	errors    int
	published int
	watched   int
}

func (f *fakeObserver) ObserveVehiclePoll(err error, published bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if err != nil {
		f.errors++
	}
	if published {
		f.published++
	}
}

func (f *fakeObserver) SetWatchedRoutes(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watched = n
}

func newTestPoller(source *fakeSource, pub Publisher, obs Observer) (*Poller, *clock.MockClock) {
	c := clock.NewMockClock(testNow)
	return NewPoller(source, Config{
		Interval:    30 * time.Second,
		IdleTimeout: 10 * time.Minute,
		Clock:       c,
		Publisher:   pub,
		Observer:    obs,
	}), c
}

func TestVehiclesServesFreshBatchFromMemory(t *testing.T) {
	source := &fakeSource{ages: map[string]time.Duration{"v1": time.Minute}}
	pub := &fakePublisher{}
	p, c := newTestPoller(source, pub, nil)
	ctx := context.Background()

	batch, err := p.Vehicles(ctx, "1:100")
	require.NoError(t, err)
	require.Len(t, batch.Vehicles, 1)
	assert.Equal(t, "v1", batch.Vehicles[0].VehicleID)

	c.Advance(10 * time.Second)
	_, err = p.Vehicles(ctx, "1:100")
	require.NoError(t, err)
	assert.Equal(t, 1, source.count("1:100"))

	c.Advance(30 * time.Second)
	_, err = p.Vehicles(ctx, "1:100")
	require.NoError(t, err)
	assert.Equal(t, 2, source.count("1:100"))
	assert.Len(t, pub.batches, 2)
}

func TestRefreshFlagsStaleVehicles(t *testing.T) {
	source := &fakeSource{ages: map[string]time.Duration{"fresh": time.Minute, "stale": time.Hour}}
	p, _ := newTestPoller(source, nil, nil)

	batch, err := p.Refresh(context.Background(), "1:100")
	require.NoError(t, err)
	require.Len(t, batch.Vehicles, 2)
	assert.Equal(t, testNow, batch.FetchedAt)

	stale := map[string]bool{}
	for _, v := range batch.Vehicles {
		stale[v.VehicleID] = v.Stale
	}
	assert.Equal(t, map[string]bool{"fresh": false, "stale": true}, stale)
}

func TestRefreshError(t *testing.T) {
	source := &fakeSource{err: errors.New("otp down")}
	obs := &fakeObserver{}
	p, _ := newTestPoller(source, nil, obs)

	_, err := p.Vehicles(context.Background(), "1:100")
	require.Error(t, err)
	assert.Equal(t, 1, obs.errors)
	assert.Equal(t, []string{"1:100"}, p.WatchedRoutes())
}

func TestPublishErrorDoesNotFailRefresh(t *testing.T) {
	source := &fakeSource{}
	obs := &fakeObserver{}
	p, _ := newTestPoller(source, &fakePublisher{err: errors.New("nats closed")}, obs)

	_, err := p.Refresh(context.Background(), "1:100")
	require.NoError(t, err)
	assert.Equal(t, 1, obs.polls)
	assert.Equal(t, 0, obs.published)
}

func TestPollOnceExpiresIdleRoutes(t *testing.T) {
	source := &fakeSource{}
	obs := &fakeObserver{}
	p, c := newTestPoller(source, &fakePublisher{}, obs)
	ctx := context.Background()

	_, err := p.Vehicles(ctx, "1:100")
	require.NoError(t, err)
	c.Advance(8 * time.Minute)
	_, err = p.Vehicles(ctx, "1:200")
	require.NoError(t, err)
	assert.Equal(t, 2, obs.watched)

	c.Advance(5 * time.Minute)
	p.PollOnce(ctx)

	assert.Equal(t, []string{"1:200"}, p.WatchedRoutes())
	assert.Equal(t, 1, obs.watched)
	assert.Equal(t, 1, source.count("1:100"))
	assert.Equal(t, 2, source.count("1:200"))
	assert.Equal(t, 3, obs.published)
}

func TestStartAndStop(t *testing.T) {
	source := &fakeSource{}
	p := NewPoller(source, Config{Interval: 10 * time.Millisecond})
	p.mu.Lock()
	p.watched["1:100"] = time.Now()
	p.mu.Unlock()

	p.Start(context.Background())
	p.Start(context.Background())

	assert.Eventually(t, func() bool { return source.count("1:100") >= 2 }, time.Second, 5*time.Millisecond)
	p.Stop()
}

func TestBatchesReturnsCopy(t *testing.T) {
	source := &fakeSource{ages: map[string]time.Duration{"v1": time.Minute}}
	p, _ := newTestPoller(source, nil, nil)

	_, err := p.Vehicles(context.Background(), "1:100")
	require.NoError(t, err)

	batches := p.Batches()
	require.Contains(t, batches, "1:100")
	delete(batches, "1:100")
	assert.Contains(t, p.Batches(), "1:100")
}

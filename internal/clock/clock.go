// Package clock lets the schedule code ask for "now" through an interface so
// tests and demos can pin the time.
package clock

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	NowUnixMilli() int64
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NowUnixMilli() int64 { return time.Now().UnixMilli() }

// MockClock is a settable clock for tests. It is safe for concurrent use.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *MockClock) NowUnixMilli() int64 {
	return m.Now().UnixMilli()
}

func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock by d, which may be negative.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// PinnedClock reads the current time from an environment variable, then a
// file, and falls back to the system time when neither holds a valid value.
// The sources are re-read on every call so a running server can be moved
// through a service day.
type PinnedClock struct {
	envVar   string
	filePath string
	location *time.Location
}

func NewPinnedClock(envVar, filePath string, location *time.Location) *PinnedClock {
	return &PinnedClock{envVar: envVar, filePath: filePath, location: location}
}

func (p *PinnedClock) Now() time.Time {
	if t, err := p.fromEnv(); err == nil {
		return t
	}
	if t, err := p.fromFile(); err == nil {
		return t
	}
	return time.Now()
}

func (p *PinnedClock) NowUnixMilli() int64 {
	return p.Now().UnixMilli()
}

func (p *PinnedClock) fromEnv() (time.Time, error) {
	if p.envVar == "" {
		return time.Time{}, errors.New("no environment variable configured")
	}
	v := os.Getenv(p.envVar)
	if v == "" {
		return time.Time{}, fmt.Errorf("%s is not set", p.envVar)
	}
	return p.parse(v)
}

func (p *PinnedClock) fromFile() (time.Time, error) {
	if p.filePath == "" {
		return time.Time{}, errors.New("no file configured")
	}
	data, err := os.ReadFile(p.filePath)
	if err != nil {
		return time.Time{}, err
	}
	return p.parse(string(data))
}

var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func (p *PinnedClock) parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if p.location == nil {
		return time.Time{}, errors.New("timezone not configured")
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, p.location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time %q", s)
}

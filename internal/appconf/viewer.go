package appconf

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultVehicleRefreshSeconds  = 30
	DefaultNumberOfDepartures     = 1000
	DefaultOnTimeThresholdSeconds = 60
	DefaultHomeTimezone           = "America/Los_Angeles"
)

// TransitOperator customizes how the routes of one agency are colored.
type TransitOperator struct {
	AgencyID          string            `yaml:"agencyId" validate:"required"`
	FeedID            string            `yaml:"feedId"`
	Name              string            `yaml:"name"`
	ColorMode         string            `yaml:"colorMode" validate:"omitempty,oneof=gtfs override"`
	DefaultRouteColor string            `yaml:"defaultRouteColor" validate:"omitempty,hexadecimal|hexcolor"`
	ModeColors        map[string]string `yaml:"modeColors"`
}

type RouteViewerConfig struct {
	VehiclePositionRefreshSeconds int `yaml:"vehiclePositionRefreshSeconds" validate:"gte=0"`
}

type StopViewerConfig struct {
	NumberOfDepartures     int  `yaml:"numberOfDepartures" validate:"gte=0"`
	OnTimeThresholdSeconds int  `yaml:"onTimeThresholdSeconds" validate:"gte=0"`
	ShowBlockIds           bool `yaml:"showBlockIds"`
}

// ViewerConfig is the YAML file shared with the web front-end.
type ViewerConfig struct {
	HomeTimezone       string            `yaml:"homeTimezone" validate:"required,timezone"`
	TransitOperators   []TransitOperator `yaml:"transitOperators" validate:"dive"`
	RouteModeOverrides map[string]string `yaml:"routeModeOverrides"`
	RouteViewer        RouteViewerConfig `yaml:"routeViewer"`
	StopViewer         StopViewerConfig  `yaml:"stopViewer"`
}

// DefaultViewerConfig is used when no file is configured.
func DefaultViewerConfig() ViewerConfig {
	cfg := ViewerConfig{HomeTimezone: DefaultHomeTimezone}
	cfg.applyDefaults()
	return cfg
}

func (c *ViewerConfig) applyDefaults() {
	if c.HomeTimezone == "" {
		c.HomeTimezone = DefaultHomeTimezone
	}
	if c.RouteViewer.VehiclePositionRefreshSeconds == 0 {
		c.RouteViewer.VehiclePositionRefreshSeconds = DefaultVehicleRefreshSeconds
	}
	if c.StopViewer.NumberOfDepartures == 0 {
		c.StopViewer.NumberOfDepartures = DefaultNumberOfDepartures
	}
	if c.StopViewer.OnTimeThresholdSeconds == 0 {
		c.StopViewer.OnTimeThresholdSeconds = DefaultOnTimeThresholdSeconds
	}
}

// ParseViewerConfig decodes and validates a YAML viewer configuration.
func ParseViewerConfig(data []byte) (ViewerConfig, error) {
	var cfg ViewerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ViewerConfig{}, fmt.Errorf("error parsing viewer config: %w", err)
	}
	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return ViewerConfig{}, fmt.Errorf("invalid viewer config: %w", err)
	}
	return cfg, nil
}

// LoadViewerConfig reads path, or returns the defaults when path is empty.
func LoadViewerConfig(path string) (ViewerConfig, error) {
	if path == "" {
		return DefaultViewerConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ViewerConfig{}, fmt.Errorf("error reading viewer config: %w", err)
	}
	return ParseViewerConfig(data)
}

// Location returns the home timezone, falling back to UTC.
func (c ViewerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.HomeTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// VehicleRefreshInterval is how often watched routes are polled.
func (c ViewerConfig) VehicleRefreshInterval() time.Duration {
	return time.Duration(c.RouteViewer.VehiclePositionRefreshSeconds) * time.Second
}

// OnTimeThreshold is the delay under which a departure counts as on time.
func (c ViewerConfig) OnTimeThreshold() time.Duration {
	return time.Duration(c.StopViewer.OnTimeThresholdSeconds) * time.Second
}

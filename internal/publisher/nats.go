// Package publisher fans vehicle positions out over NATS.
package publisher

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"otpviewer.org/internal/realtime"
)

const subjectPrefix = "vehicles"

type NATSPublisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "nats_publisher"))

	nc, err := nats.Connect(url,
		nats.Name("otpviewer"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("error connecting to nats: %w", err)
	}
	return &NATSPublisher{nc: nc, logger: logger}, nil
}

// Subject is the NATS subject carrying the vehicles of a route.
func Subject(routeID string) string {
	return subjectPrefix + "." + subjectToken(routeID)
}

// PublishVehicles sends the batch as JSON on the route's subject.
func (p *NATSPublisher) PublishVehicles(batch realtime.VehicleBatch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("error encoding vehicle batch: %w", err)
	}
	subject := Subject(batch.RouteID)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("error publishing to %s: %w", subject, err)
	}
	p.logger.Debug("published vehicles", slog.String("subject", subject), slog.Int("count", len(batch.Vehicles)))
	return nil
}

func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("nats drain failed", slog.Any("error", err))
	}
	p.nc.Close()
}

// NATS tokens cannot contain whitespace, '.', '*' or '>'.
var subjectReplacer = strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")

func subjectToken(s string) string {
	s = subjectReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return "_"
	}
	return s
}

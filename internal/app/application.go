package app

import (
	"log/slog"

	"otpviewer.org/internal/appconf"
	"otpviewer.org/internal/clock"
	"otpviewer.org/internal/metrics"
	"otpviewer.org/internal/otp"
	"otpviewer.org/internal/realtime"
	"otpviewer.org/internal/store"
	"otpviewer.org/internal/transitindex"
)

// Application holds the dependencies shared by the HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config       appconf.Config
	ViewerConfig appconf.ViewerConfig
	Logger       *slog.Logger
	Clock        clock.Clock
	Metrics      *metrics.Metrics

	OTP    *otp.Client
	Index  *transitindex.Index
	Poller *realtime.Poller
	// Store is nil when favorites are disabled.
	Store *store.Store
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"otpviewer.org/internal/app"
	"otpviewer.org/internal/appconf"
	"otpviewer.org/internal/clock"
	"otpviewer.org/internal/logging"
	"otpviewer.org/internal/metrics"
	"otpviewer.org/internal/otp"
	"otpviewer.org/internal/publisher"
	"otpviewer.org/internal/realtime"
	"otpviewer.org/internal/restapi"
	"otpviewer.org/internal/store"
	"otpviewer.org/internal/transitindex"
	"otpviewer.org/internal/webui"
)

const (
	pinnedClockEnvVar = "OTPVIEWER_NOW"
	dbStatsInterval   = 15 * time.Second
)

// ServerDeps is everything Run must tear down besides the HTTP server.
type ServerDeps struct {
	Publisher *publisher.NATSPublisher
}

// ParseAPIKeys splits a comma-separated list of API keys.
func ParseAPIKeys(apiKeysFlag string) []string {
	if apiKeysFlag == "" {
		return []string{}
	}
	keys := strings.Split(apiKeysFlag, ",")
	for i, key := range keys {
		keys[i] = strings.TrimSpace(key)
	}
	return keys
}

// ParseList is ParseAPIKeys without the empty entries.
func ParseList(value string) []string {
	var out []string
	for _, v := range ParseAPIKeys(value) {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func newLogger(cfg appconf.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return logging.NewLogger(os.Stdout, level, cfg.Env == appconf.Development)
}

// BuildApplication wires the OTP client, the route index, the vehicle poller
// and, when a data path is configured, the favorites store.
func BuildApplication(cfg appconf.Config, otpCfg otp.Config, viewerCfg appconf.ViewerConfig) (*app.Application, *ServerDeps, error) {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	appMetrics := metrics.NewWithLogger(logger)

	var appClock clock.Clock = clock.RealClock{}
	if cfg.Env != appconf.Production {
		appClock = clock.NewPinnedClock(pinnedClockEnvVar, cfg.ClockFile, viewerCfg.Location())
	}

	otpClient, err := otp.NewClient(otpCfg, appMetrics)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize trip planner client: %w", err)
	}

	index := transitindex.New(otpClient, transitindex.Config{
		Viewer: viewerCfg,
		Clock:  appClock,
	}, appMetrics)

	deps := &ServerDeps{}
	var pub realtime.Publisher
	if cfg.NatsURL != "" {
		deps.Publisher, err = publisher.NewNATSPublisher(cfg.NatsURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize vehicle publisher: %w", err)
		}
		pub = deps.Publisher
	}

	poller := realtime.NewPoller(otpClient, realtime.Config{
		Interval:  viewerCfg.VehicleRefreshInterval(),
		Clock:     appClock,
		Logger:    logger,
		Publisher: pub,
		Observer:  appMetrics,
	})

	var favorites *store.Store
	if cfg.DataPath != "" {
		favorites, err = store.Open(context.Background(), store.Config{
			DBPath: cfg.DataPath,
			Env:    cfg.Env,
			Clock:  appClock,
		})
		if err != nil {
			if deps.Publisher != nil {
				deps.Publisher.Close()
			}
			return nil, nil, fmt.Errorf("failed to open favorites store: %w", err)
		}
		appMetrics.StartDBStatsCollector(favorites.DB(), dbStatsInterval)
	}

	return &app.Application{
		Config:       cfg,
		ViewerConfig: viewerCfg,
		Logger:       logger,
		Clock:        appClock,
		Metrics:      appMetrics,
		OTP:          otpClient,
		Index:        index,
		Poller:       poller,
		Store:        favorites,
	}, deps, nil
}

// CreateServer builds the HTTP server. The returned RestAPI must be shut
// down by the caller.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)
	webUI := webui.New(coreApp, cfg.AssetsDir)

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	webUI.SetWebUIRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Handler(mux),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return srv, api
}

// Run serves until SIGINT or SIGTERM, then shuts everything down.
func Run(srv *http.Server, coreApp *app.Application, api *restapi.RestAPI, deps *ServerDeps) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, srv, coreApp, api, deps)
}

func run(ctx context.Context, srv *http.Server, coreApp *app.Application, api *restapi.RestAPI, deps *ServerDeps) error {
	logger := coreApp.Logger

	coreApp.Poller.Start(ctx)

	serveErr := make(chan error, 1)
	go func() {
		logging.LogOperation(logger, "server_starting",
			slog.String("addr", srv.Addr),
			slog.String("env", coreApp.Config.Env.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logging.LogOperation(logger, "shutting_down_server")
	case err := <-serveErr:
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(logger, "server forced to shutdown", err)
		runErr = errors.Join(runErr, err)
	}

	coreApp.Poller.Stop()
	api.Shutdown()
	if deps != nil && deps.Publisher != nil {
		deps.Publisher.Close()
	}
	if coreApp.Store != nil {
		logging.SafeCloseWithLogging(coreApp.Store, logger, "favorites store")
	}
	coreApp.Metrics.Shutdown()

	logging.LogOperation(logger, "server_exited")
	return runErr
}

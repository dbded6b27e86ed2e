package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"otpviewer.org/internal/appconf"
	"otpviewer.org/internal/buildinfo"
	"otpviewer.org/internal/otp"
)

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("ignoring invalid %s=%q", key, v)
		return def
	}
	return n
}

type flags struct {
	cfg        appconf.Config
	otpCfg     otp.Config
	env        string
	apiKeys    string
	exemptKeys string
	cors       string
	version    bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*flags, error) {
	f := &flags{}

	fs.IntVar(&f.cfg.Port, "port", envIntOr("PORT", 4000), "API server port")
	fs.StringVar(&f.env, "env", envOr("ENV", "development"), "Environment (development|test|production)")
	fs.StringVar(&f.apiKeys, "api-keys", envOr("API_KEYS", "test"), "Comma separated list of API keys")
	fs.StringVar(&f.exemptKeys, "exempt-api-keys", envOr("EXEMPT_API_KEYS", ""), "API keys that bypass rate limiting")
	fs.IntVar(&f.cfg.RateLimit, "rate-limit", envIntOr("RATE_LIMIT", 100), "Requests per second per API key (negative disables)")
	fs.BoolVar(&f.cfg.Verbose, "verbose", envOr("VERBOSE", "") == "true", "Enable debug logging")
	fs.StringVar(&f.cors, "cors-origins", envOr("CORS_ORIGINS", "*"), "Comma separated list of allowed origins")
	fs.StringVar(&f.cfg.DataPath, "data-path", envOr("DATA_PATH", ""), "SQLite file for favorite stops; empty disables favorites")
	fs.StringVar(&f.cfg.ViewerConfig, "viewer-config", envOr("VIEWER_CONFIG", ""), "Viewer YAML configuration file")
	fs.StringVar(&f.cfg.NatsURL, "nats-url", envOr("NATS_URL", ""), "NATS server for vehicle fan-out; empty disables publishing")
	fs.StringVar(&f.cfg.AssetsDir, "assets-dir", envOr("ASSETS_DIR", ""), "Directory holding the viewer front-end")
	fs.StringVar(&f.cfg.ClockFile, "clock-file", envOr("CLOCK_FILE", ""), "File holding a pinned current time (non-production only)")

	fs.StringVar(&f.otpCfg.BaseURL, "otp-url", envOr("OTP_URL", ""), "Base URL of the OpenTripPlanner instance")
	fs.StringVar(&f.otpCfg.AuthHeaderKey, "otp-auth-header-key", envOr("OTP_AUTH_HEADER_KEY", ""), "Optional auth header sent to OTP")
	fs.StringVar(&f.otpCfg.AuthHeaderValue, "otp-auth-header-value", envOr("OTP_AUTH_HEADER_VALUE", ""), "Value of the OTP auth header")
	fs.DurationVar(&f.otpCfg.ThrottleInterval, "otp-throttle", 100*time.Millisecond, "Minimum spacing of throttled OTP queries")
	fs.DurationVar(&f.otpCfg.Timeout, "otp-timeout", 10*time.Second, "OTP request timeout")

	fs.BoolVar(&f.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	env, err := appconf.EnvFlagToEnvironment(f.env)
	if err != nil {
		return nil, err
	}
	f.cfg.Env = env
	f.cfg.ApiKeys = ParseAPIKeys(f.apiKeys)
	f.cfg.ExemptApiKeys = ParseList(f.exemptKeys)
	f.cfg.CORSOrigins = ParseList(f.cors)

	if !f.version && f.otpCfg.BaseURL == "" {
		return nil, errors.New("an OTP base URL is required (-otp-url or OTP_URL)")
	}
	return f, nil
}

func loadViewerConfig(path string) (appconf.ViewerConfig, error) {
	if path == "" {
		return appconf.DefaultViewerConfig(), nil
	}
	return appconf.LoadViewerConfig(path)
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	f, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if f.version {
		fmt.Printf("otpviewer %s (%s, %s) built %s\n",
			buildinfo.Version, buildinfo.ShortCommit(), buildinfo.Branch, buildinfo.BuildTime)
		return
	}

	viewerCfg, err := loadViewerConfig(f.cfg.ViewerConfig)
	if err != nil {
		log.Fatalf("viewer config error: %v", err)
	}

	coreApp, deps, err := BuildApplication(f.cfg, f.otpCfg, viewerCfg)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	srv, api := CreateServer(coreApp, f.cfg)
	if err := Run(srv, coreApp, api, deps); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// Package webui serves the viewer front-end assets and the debug pages.
package webui

import (
	"log/slog"
	"net/http"

	"otpviewer.org/internal/app"
)

const DefaultAssetsDir = "public"

// WebUI serves the non-API pages.
type WebUI struct {
	*app.Application
	// AssetsDir holds the built viewer front-end.
	AssetsDir string
}

// New creates the web UI; an empty assetsDir means DefaultAssetsDir.
func New(application *app.Application, assetsDir string) *WebUI {
	if assetsDir == "" {
		assetsDir = DefaultAssetsDir
	}
	return &WebUI{Application: application, AssetsDir: assetsDir}
}

// SetWebUIRoutes registers /debug and /viewer/ on mux.
func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug", webUI.debugIndexHandler)
	mux.HandleFunc("GET /viewer/{$}", webUI.assetsHandler)
	mux.HandleFunc("GET /viewer/{file}", webUI.assetsHandler)
}

func (webUI *WebUI) logger() *slog.Logger {
	if webUI.Application != nil && webUI.Logger != nil {
		return webUI.Logger.With(slog.String("component", "webui"))
	}
	return slog.Default()
}

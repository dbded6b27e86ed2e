package webui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"otpviewer.org/internal/appconf"
	"otpviewer.org/internal/logging"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

type debugData struct {
	Title string
	Pre   string
}

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

func writeDebugData(w http.ResponseWriter, logger *slog.Logger, title string, data any) {
	w.Header().Set("Content-Type", "text/html")
	err := debugTemplate.Execute(w, debugData{Title: title, Pre: dumper.Sdump(data)})
	if err != nil {
		logging.LogError(logger, "failed to execute debug template", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// debugIndexHandler dumps the in-memory state. It is hidden in production.
func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Application == nil || webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}

	var data any
	var title string

	switch r.URL.Query().Get("dataType") {
	case "stats":
		title = "Transit Index - Stats"
		if webUI.Index != nil {
			data = webUI.Index.Stats()
		}
	case "routes":
		title = "Transit Index - Cached Routes"
		if webUI.Index != nil {
			data = webUI.Index.Snapshot()
		}
	case "vehicles":
		title = "Vehicle Poller - Latest Batches"
		if webUI.Poller != nil {
			data = webUI.Poller.Batches()
		}
	case "config":
		title = "Viewer Config"
		data = webUI.ViewerConfig
	default:
		title = "Choose a data type"
		data = map[string]string{
			"error": "Please use one of the following: stats, routes, vehicles, config.",
		}
	}

	writeDebugData(w, webUI.logger(), title, data)
}

package webui

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"otpviewer.org/internal/logging"
)

var allowedExtensions = map[string]bool{
	".html": true, ".css": true, ".js": true, ".map": true,
	".png": true, ".jpg": true, ".jpeg": true, ".svg": true,
	".ico": true, ".json": true, ".woff2": true,
}

// assetsHandler serves one file of the viewer front-end from AssetsDir.
func (webUI *WebUI) assetsHandler(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("file")
	if fileName == "" {
		fileName = "index.html"
	}

	if !allowedExtensions[strings.ToLower(filepath.Ext(fileName))] {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if strings.Contains(fileName, "..") || strings.ContainsAny(fileName, "/\\\x00") {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	assetsDir, err := filepath.Abs(webUI.AssetsDir)
	if err != nil {
		http.Error(w, "Internal configuration error", http.StatusInternalServerError)
		return
	}
	absPath := filepath.Join(assetsDir, fileName)

	rel, err := filepath.Rel(assetsDir, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		webUI.logger().Warn("potential path traversal attempt blocked", slog.String("path", absPath))
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(absPath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer logging.SafeCloseWithLogging(f, webUI.logger(), "asset file")

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	http.ServeContent(w, r, stat.Name(), stat.ModTime(), f)
}

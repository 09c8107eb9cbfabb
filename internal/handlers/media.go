package handlers

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"home-gallery/internal/logging"
	"home-gallery/internal/media"
	"home-gallery/internal/pathsafe"
)

// Media serves GET /media/{path}: the original file, with range support for
// video seeking. Traversal attempts and unsupported file types both 404 so
// probing reveals nothing about the tree.
func (h *Handlers) Media(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.ServeMedia {
		http.NotFound(w, r)
		return
	}

	rel := mux.Vars(r)["path"]

	abs, err := pathsafe.Resolve(h.cfg.MediaDir, rel)
	if err != nil {
		logging.Warn("rejected media request outside media root: %q", rel)
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	if media.KindForPath(rel) == media.KindOther {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", media.MimeType(rel))
	http.ServeFile(w, r, abs)
}

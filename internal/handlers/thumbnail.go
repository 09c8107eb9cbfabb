package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"home-gallery/internal/logging"
	"home-gallery/internal/media"
	"home-gallery/internal/pathsafe"
)

// Thumbnail serves GET /thumbnail/{path}: the thumbnail for a video,
// generating it synchronously if the background pass has not reached it yet.
// Requests that cannot be satisfied redirect to the placeholder image so the
// gallery grid never shows a broken tile.
func (h *Handlers) Thumbnail(w http.ResponseWriter, r *http.Request) {
	rel := mux.Vars(r)["path"]

	if _, err := pathsafe.Resolve(h.cfg.MediaDir, rel); err != nil {
		logging.Warn("rejected thumbnail request outside media root: %q", rel)
		http.NotFound(w, r)
		return
	}

	// Images do not get separate thumbnails; send the client to the file.
	if !media.IsVideo(rel) {
		http.Redirect(w, r, media.MediaURLPrefix+rel, http.StatusFound)
		return
	}

	path := h.store.Ensure(r.Context(), rel, h.cfg.Placeholder)
	if path == h.cfg.Placeholder {
		http.Redirect(w, r, h.cfg.Placeholder, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}

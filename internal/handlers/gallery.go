package handlers

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"home-gallery/internal/logging"
	"home-gallery/internal/media"
	"home-gallery/internal/pathsafe"
)

// GalleryResponse is the paginated listing returned by the gallery and
// browse endpoints.
type GalleryResponse struct {
	Folder     string         `json:"folder"`
	Subfolders []string       `json:"subfolders,omitempty"`
	Files      []media.Record `json:"files"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	TotalFiles int            `json:"total_files"`
}

// Gallery serves GET /api/gallery: a recursive, paginated listing of the
// requested folder with real dimensions resolved per file.
//
// Query parameters: folder (relative to the media root, default the root),
// sort (default, random, new), page (1-based).
func (h *Handlers) Gallery(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, false)
}

// Browse serves GET /api/browse: like Gallery but scoped to one folder and
// including its immediate subfolder names for navigation.
func (h *Handlers) Browse(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, true)
}

func (h *Handlers) listing(w http.ResponseWriter, r *http.Request, withSubfolders bool) {
	folder := r.URL.Query().Get("folder")

	absDir, err := pathsafe.Resolve(h.cfg.MediaDir, folder)
	if err != nil {
		if errors.Is(err, pathsafe.ErrOutsideRoot) {
			logging.Warn("rejected listing request outside media root: %q", folder)
			writeJSONError(w, "invalid folder", http.StatusBadRequest)
			return
		}
		writeJSONError(w, "invalid folder", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(absDir)
	if err != nil || !info.IsDir() {
		writeJSONError(w, "folder not found", http.StatusNotFound)
		return
	}

	records, err := h.scanner.Scan(absDir, h.cfg.UseCache, true)
	if err != nil {
		logging.Error("scan failed for %s: %v", absDir, err)
		writeJSONError(w, "failed to scan folder", http.StatusInternalServerError)
		return
	}

	records = h.scanner.Sorted(records, absDir, sortMode(r.URL.Query().Get("sort")))
	records = media.Rebase(records, folder)

	page := parsePage(r.URL.Query().Get("page"))
	pageRecords, totalPages := paginate(records, page, h.cfg.ItemsPerPage)

	resp := GalleryResponse{
		Folder:     folder,
		Files:      pageRecords,
		Page:       page,
		TotalPages: totalPages,
		TotalFiles: len(records),
	}

	if withSubfolders {
		subfolders, err := media.ListSubfolders(absDir)
		if err != nil {
			logging.Warn("failed to list subfolders of %s: %v", absDir, err)
		}
		resp.Subfolders = subfolders
	}

	writeJSON(w, resp)
}

func sortMode(s string) media.SortMode {
	switch s {
	case string(media.SortRandom):
		return media.SortRandom
	case string(media.SortNew):
		return media.SortNew
	default:
		return media.SortDefault
	}
}

func parsePage(s string) int {
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// paginate slices records for a 1-based page. An out-of-range page returns an
// empty slice, not an error. Empty input is a single empty page.
func paginate(records []media.Record, page, perPage int) ([]media.Record, int) {
	totalPages := (len(records) + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * perPage
	if start >= len(records) {
		return []media.Record{}, totalPages
	}
	end := start + perPage
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], totalPages
}

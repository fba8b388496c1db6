package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// handleFetchArtist resolves a single artist from the catalog.
// POST /api/v1/fetch/artist
func (r *Router) handleFetchArtist(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Artist string `json:"artist"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	body.Artist = strings.TrimSpace(body.Artist)
	if body.Artist == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "artist is required"})
		return
	}

	a, err := r.ingestService.FetchArtist(req.Context(), body.Artist)
	if err != nil {
		r.writeFetchError(w, err)
		return
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "artist not found in catalog"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"artist": a})
}

// handleFetchTrack resolves a single track, its album, and its artists.
// POST /api/v1/fetch/track
func (r *Router) handleFetchTrack(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Artist string `json:"artist"`
		Track  string `json:"track"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	body.Artist = strings.TrimSpace(body.Artist)
	body.Track = strings.TrimSpace(body.Track)
	if body.Artist == "" || body.Track == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "artist and track are required"})
		return
	}

	sg, err := r.ingestService.FetchTrack(req.Context(), body.Artist, body.Track)
	if err != nil {
		r.writeFetchError(w, err)
		return
	}
	if sg == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "track not found in catalog"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"song": sg})
}

// handleFetchDiscography resolves an artist and its full album list.
// POST /api/v1/fetch/discography
func (r *Router) handleFetchDiscography(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Artist string `json:"artist"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	body.Artist = strings.TrimSpace(body.Artist)
	if body.Artist == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "artist is required"})
		return
	}

	albums, err := r.ingestService.FetchDiscography(req.Context(), body.Artist)
	if err != nil {
		r.writeFetchError(w, err)
		return
	}
	if albums == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "artist not found in catalog"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"albums": albums,
		"total":  len(albums),
	})
}

// handleFetchCatalog resolves an artist's discography and every track on it.
// POST /api/v1/fetch/catalog
func (r *Router) handleFetchCatalog(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Artist string `json:"artist"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	body.Artist = strings.TrimSpace(body.Artist)
	if body.Artist == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "artist is required"})
		return
	}

	report, err := r.ingestService.FetchFullCatalog(req.Context(), body.Artist)
	if err != nil {
		r.writeFetchError(w, err)
		return
	}
	if report == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "artist not found in catalog"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

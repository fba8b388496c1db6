package api

import (
	"net/http"
)

// handleListGenres returns all known genres as JSON.
// GET /api/v1/genres
func (r *Router) handleListGenres(w http.ResponseWriter, req *http.Request) {
	genres, err := r.store.ListGenres(req.Context())
	if err != nil {
		r.logger.Error("listing genres", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"genres": genres})
}

// handleListArtists returns all known artists as JSON.
// GET /api/v1/artists
func (r *Router) handleListArtists(w http.ResponseWriter, req *http.Request) {
	artists, err := r.store.ListArtists(req.Context())
	if err != nil {
		r.logger.Error("listing artists", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artists": artists})
}

// handleGetArtist returns a single artist with its genres and albums.
// GET /api/v1/artists/{id}
func (r *Router) handleGetArtist(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")

	a, err := r.store.GetArtist(req.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "artist not found"})
		return
	}

	genres, err := r.store.GenresByArtist(req.Context(), id)
	if err != nil {
		r.logger.Warn("listing artist genres", "artist_id", id, "error", err)
		genres = nil
	}
	albums, err := r.store.AlbumsByArtist(req.Context(), id)
	if err != nil {
		r.logger.Warn("listing artist albums", "artist_id", id, "error", err)
		albums = nil
	}
	songs, err := r.store.SongsByArtist(req.Context(), id)
	if err != nil {
		r.logger.Warn("listing artist songs", "artist_id", id, "error", err)
		songs = nil
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"artist": a,
		"genres": genres,
		"albums": albums,
		"songs":  songs,
	})
}

// handleListAlbums returns all known albums as JSON.
// GET /api/v1/albums
func (r *Router) handleListAlbums(w http.ResponseWriter, req *http.Request) {
	albums, err := r.store.ListAlbums(req.Context())
	if err != nil {
		r.logger.Error("listing albums", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"albums": albums})
}

// handleGetAlbum returns a single album with its artists and songs.
// GET /api/v1/albums/{id}
func (r *Router) handleGetAlbum(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")

	al, err := r.store.GetAlbum(req.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "album not found"})
		return
	}

	artists, err := r.store.ArtistsByAlbum(req.Context(), id)
	if err != nil {
		r.logger.Warn("listing album artists", "album_id", id, "error", err)
		artists = nil
	}
	songs, err := r.store.SongsByAlbum(req.Context(), id)
	if err != nil {
		r.logger.Warn("listing album songs", "album_id", id, "error", err)
		songs = nil
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"album":   al,
		"artists": artists,
		"songs":   songs,
	})
}

// handleListSongs returns all known songs as JSON.
// GET /api/v1/songs
func (r *Router) handleListSongs(w http.ResponseWriter, req *http.Request) {
	songs, err := r.store.ListSongs(req.Context())
	if err != nil {
		r.logger.Error("listing songs", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"songs": songs})
}

// handleGetSong returns a single song with its owning album and artists.
// GET /api/v1/songs/{id}
func (r *Router) handleGetSong(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")

	sg, err := r.store.GetSong(req.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "song not found"})
		return
	}

	al, err := r.store.GetAlbum(req.Context(), sg.AlbumID)
	if err != nil {
		r.logger.Warn("loading song album", "song_id", id, "error", err)
		al = nil
	}
	artists, err := r.store.ArtistsBySong(req.Context(), id)
	if err != nil {
		r.logger.Warn("listing song artists", "song_id", id, "error", err)
		artists = nil
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"song":    sg,
		"album":   al,
		"artists": artists,
	})
}

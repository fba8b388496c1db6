package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wconley/cratedig/internal/catalog"
	"github.com/wconley/cratedig/internal/database"
	"github.com/wconley/cratedig/internal/ingest"
	"github.com/wconley/cratedig/internal/resolve"
	"github.com/wconley/cratedig/internal/store"
)

type stubCatalog struct {
	artists     map[string][]catalog.ArtistCandidate
	albums      map[string][]catalog.AlbumCandidate
	albumTracks map[string][]catalog.TrackCandidate
	tracks      []catalog.TrackCandidate
	err         error
}

func (s *stubCatalog) SearchArtists(_ context.Context, name string, _ int) ([]catalog.ArtistCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.artists[name], nil
}

func (s *stubCatalog) SearchTracks(_ context.Context, _, _ string, _ int) ([]catalog.TrackCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tracks, nil
}

func (s *stubCatalog) AlbumsByArtist(_ context.Context, externalID string, _ int) ([]catalog.AlbumCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.albums[externalID], nil
}

func (s *stubCatalog) TracksByAlbum(_ context.Context, externalID string) ([]catalog.TrackCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.albumTracks[externalID], nil
}

func testRouter(t *testing.T, client catalog.Client) (*Router, *store.Store) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate database: %v", err)
	}

	st := store.New(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := resolve.New(st, client, logger)
	svc := ingest.New(st, client, resolver, logger)

	return NewRouter(RouterDeps{
		IngestService: svc,
		Store:         st,
		Logger:        logger,
	}), st
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response body: %v; body: %s", err, w.Body.String())
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	r, _ := testRouter(t, &stubCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestHandleFetchArtist(t *testing.T) {
	r, st := testRouter(t, &stubCatalog{artists: map[string][]catalog.ArtistCandidate{
		"Radiohead": {{Name: "Radiohead", ExternalID: "rh1", Genres: []string{"art rock"}}},
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fetch/artist",
		strings.NewReader(`{"artist": "Radiohead"}`))
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	artists, err := st.ListArtists(context.Background())
	if err != nil {
		t.Fatalf("ListArtists: %v", err)
	}
	if len(artists) != 1 || artists[0].Name != "Radiohead" {
		t.Errorf("persisted artists = %+v, want [Radiohead]", artists)
	}
}

func TestHandleFetchArtistNotFound(t *testing.T) {
	r, _ := testRouter(t, &stubCatalog{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fetch/artist",
		strings.NewReader(`{"artist": "Nobody"}`))
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleFetchArtistBadRequest(t *testing.T) {
	r, _ := testRouter(t, &stubCatalog{})

	for _, payload := range []string{`{}`, `{"artist": "  "}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/fetch/artist", strings.NewReader(payload))
		w := httptest.NewRecorder()
		r.Handler().ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("payload %q: status = %d, want %d", payload, w.Code, http.StatusBadRequest)
		}
	}
}

func TestHandleFetchArtistCatalogDown(t *testing.T) {
	r, _ := testRouter(t, &stubCatalog{
		err: &catalog.ErrUnavailable{Op: "search artists", Cause: io.ErrUnexpectedEOF},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fetch/artist",
		strings.NewReader(`{"artist": "Radiohead"}`))
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestHandleFetchDiscography(t *testing.T) {
	rh := catalog.ArtistRef{Name: "Radiohead", ExternalID: "rh1"}
	client := &stubCatalog{
		artists: map[string][]catalog.ArtistCandidate{
			"Radiohead": {{Name: "Radiohead", ExternalID: "rh1"}},
		},
		albums: map[string][]catalog.AlbumCandidate{
			"rh1": {
				{Name: "OK Computer", ExternalID: "okc", AlbumType: "album", ReleaseDate: "1997-06-16", Artists: []catalog.ArtistRef{rh}},
				{Name: "Kid A", ExternalID: "kida", AlbumType: "album", ReleaseDate: "2000-10-02", Artists: []catalog.ArtistRef{rh}},
			},
		},
	}
	r, _ := testRouter(t, client)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fetch/discography",
		strings.NewReader(`{"artist": "Radiohead"}`))
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	body := decodeBody(t, w)
	if total, ok := body["total"].(float64); !ok || total != 2 {
		t.Errorf("total = %v, want 2", body["total"])
	}
}

func TestHandleListAndGetArtist(t *testing.T) {
	r, st := testRouter(t, &stubCatalog{})
	ctx := context.Background()

	a, _, err := st.GetOrCreateArtist(ctx, "Radiohead", "rh1")
	if err != nil {
		t.Fatalf("GetOrCreateArtist: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/artists", nil)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", w.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/artists/"+a.ID, nil)
	w = httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	body := decodeBody(t, w)
	artist, ok := body["artist"].(map[string]any)
	if !ok || artist["name"] != "Radiohead" {
		t.Errorf("artist = %v, want Radiohead", body["artist"])
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/artists/missing", nil)
	w = httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing artist status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleGetAlbumWithSongs(t *testing.T) {
	r, st := testRouter(t, &stubCatalog{})
	ctx := context.Background()

	al, _, err := st.GetOrCreateAlbum(ctx, "OK Computer", "album", "1997-06-16", "okc")
	if err != nil {
		t.Fatalf("GetOrCreateAlbum: %v", err)
	}
	if _, _, err := st.GetOrCreateSong(ctx, "Airbag", al.ID, "1997-06-16", 70); err != nil {
		t.Fatalf("GetOrCreateSong: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/albums/"+al.ID, nil)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	body := decodeBody(t, w)
	songs, ok := body["songs"].([]any)
	if !ok || len(songs) != 1 {
		t.Errorf("songs = %v, want one song", body["songs"])
	}
}

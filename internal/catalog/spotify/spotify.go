package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/wconley/cratedig/internal/catalog"
)

const (
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token" //nolint:gosec // G101: token endpoint URL, not a credential
)

// Adapter implements catalog.Client against the Spotify Web API using the
// client-credentials grant. Credentials are injected at construction; there
// is no lazy global authentication state.
type Adapter struct {
	client  *http.Client
	limiter *catalog.RateLimiter
	logger  *slog.Logger
	baseURL string
}

// Config holds the adapter's credentials and endpoint overrides. BaseURL and
// TokenURL default to the public Spotify endpoints and exist for testing.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
}

// New creates a Spotify adapter.
func New(cfg Config, limiter *catalog.RateLimiter, logger *slog.Logger) *Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}
	client := cc.Client(context.Background())
	client.Timeout = 10 * time.Second

	return &Adapter{
		client:  client,
		limiter: limiter,
		logger:  logger.With(slog.String("catalog", "spotify")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SearchArtists searches the catalog for artists matching the given name.
func (a *Adapter) SearchArtists(ctx context.Context, name string, limit int) ([]catalog.ArtistCandidate, error) {
	if name == "" {
		return nil, nil
	}

	params := url.Values{
		"q":     {name},
		"type":  {"artist"},
		"limit": {strconv.Itoa(limit)},
	}
	body, err := a.doRequest(ctx, "search artists", a.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing artist search response: %w", err)
	}
	if resp.Artists == nil {
		return nil, nil
	}

	candidates := make([]catalog.ArtistCandidate, 0, len(resp.Artists.Items))
	for _, item := range resp.Artists.Items {
		candidates = append(candidates, artistCandidate(item))
	}

	a.logger.Debug("artist search completed",
		slog.String("query", name),
		slog.Int("results", len(candidates)))

	return candidates, nil
}

// SearchTracks searches the catalog for tracks matching an artist and track
// name pair.
func (a *Adapter) SearchTracks(ctx context.Context, artistName, trackName string, limit int) ([]catalog.TrackCandidate, error) {
	if artistName == "" || trackName == "" {
		return nil, nil
	}

	params := url.Values{
		"q":     {fmt.Sprintf("artist:%s track:%s", artistName, trackName)},
		"type":  {"track"},
		"limit": {strconv.Itoa(limit)},
	}
	body, err := a.doRequest(ctx, "search tracks", a.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing track search response: %w", err)
	}
	if resp.Tracks == nil {
		return nil, nil
	}

	candidates := make([]catalog.TrackCandidate, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
		candidates = append(candidates, trackCandidate(item))
	}

	a.logger.Debug("track search completed",
		slog.String("artist", artistName),
		slog.String("track", trackName),
		slog.Int("results", len(candidates)))

	return candidates, nil
}

// AlbumsByArtist lists an artist's albums by their catalog id.
func (a *Adapter) AlbumsByArtist(ctx context.Context, externalID string, limit int) ([]catalog.AlbumCandidate, error) {
	if externalID == "" {
		return nil, nil
	}

	params := url.Values{"limit": {strconv.Itoa(limit)}}
	reqURL := fmt.Sprintf("%s/artists/%s/albums?%s", a.baseURL, url.PathEscape(externalID), params.Encode())
	body, err := a.doRequest(ctx, "list albums", reqURL)
	if err != nil {
		return nil, err
	}

	var page albumPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parsing album listing: %w", err)
	}

	candidates := make([]catalog.AlbumCandidate, 0, len(page.Items))
	for _, item := range page.Items {
		candidates = append(candidates, albumCandidate(item))
	}

	a.logger.Debug("album listing completed",
		slog.String("artist_id", externalID),
		slog.Int("results", len(candidates)))

	return candidates, nil
}

// TracksByAlbum lists an album's tracks by the album's catalog id. The full
// album resource embeds its track listing, so one request yields both the
// album summary and its tracks.
func (a *Adapter) TracksByAlbum(ctx context.Context, externalID string) ([]catalog.TrackCandidate, error) {
	if externalID == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/albums/%s", a.baseURL, url.PathEscape(externalID))
	body, err := a.doRequest(ctx, "list tracks", reqURL)
	if err != nil {
		return nil, err
	}

	var album albumObject
	if err := json.Unmarshal(body, &album); err != nil {
		return nil, fmt.Errorf("parsing album response: %w", err)
	}

	summary := albumCandidate(album)
	var candidates []catalog.TrackCandidate
	if album.Tracks != nil {
		candidates = make([]catalog.TrackCandidate, 0, len(album.Tracks.Items))
		for _, item := range album.Tracks.Items {
			tc := trackCandidate(item)
			tc.Album = summary
			candidates = append(candidates, tc)
		}
	}

	a.logger.Debug("track listing completed",
		slog.String("album_id", externalID),
		slog.Int("results", len(candidates)))

	return candidates, nil
}

// doRequest executes a rate-limited GET and returns the response body.
func (a *Adapter) doRequest(ctx context.Context, op, reqURL string) ([]byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, &catalog.ErrUnavailable{Op: op, Cause: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &catalog.ErrUnavailable{Op: op, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusNotFound:
		return nil, &catalog.ErrNotFound{Op: op, ID: reqURL}
	case http.StatusTooManyRequests:
		return nil, &catalog.ErrUnavailable{Op: op, Cause: fmt.Errorf("rate limited by server")}
	default:
		return nil, &catalog.ErrUnavailable{Op: op, Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
}

func artistCandidate(o artistObject) catalog.ArtistCandidate {
	return catalog.ArtistCandidate{
		Name:       o.Name,
		ExternalID: o.ID,
		Genres:     o.Genres,
	}
}

func artistRefs(objs []artistObject) []catalog.ArtistRef {
	refs := make([]catalog.ArtistRef, 0, len(objs))
	for _, o := range objs {
		refs = append(refs, catalog.ArtistRef{Name: o.Name, ExternalID: o.ID})
	}
	return refs
}

func albumCandidate(o albumObject) catalog.AlbumCandidate {
	return catalog.AlbumCandidate{
		Name:        o.Name,
		ExternalID:  o.ID,
		AlbumType:   o.AlbumType,
		ReleaseDate: o.ReleaseDate,
		Artists:     artistRefs(o.Artists),
	}
}

func trackCandidate(o trackObject) catalog.TrackCandidate {
	tc := catalog.TrackCandidate{
		Name:       o.Name,
		Popularity: o.Popularity,
		Artists:    artistRefs(o.Artists),
	}
	if o.Album != nil {
		tc.Album = albumCandidate(*o.Album)
	}
	return tc
}

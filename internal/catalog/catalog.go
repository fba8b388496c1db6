package catalog

import (
	"context"
	"fmt"
)

// ArtistRef is a minimal artist summary embedded in album and track
// candidates.
type ArtistRef struct {
	Name       string `json:"name"`
	ExternalID string `json:"external_id"`
}

// ArtistCandidate is a single artist hit from a catalog search.
type ArtistCandidate struct {
	Name       string   `json:"name"`
	ExternalID string   `json:"external_id"`
	Genres     []string `json:"genres,omitempty"`
}

// AlbumCandidate is a single album from a catalog search or listing.
type AlbumCandidate struct {
	Name        string      `json:"name"`
	ExternalID  string      `json:"external_id"`
	AlbumType   string      `json:"album_type"`
	ReleaseDate string      `json:"release_date"`
	Artists     []ArtistRef `json:"artists,omitempty"`
}

// TrackCandidate is a single track from a catalog search or album listing.
type TrackCandidate struct {
	Name       string         `json:"name"`
	Popularity int            `json:"popularity"`
	Album      AlbumCandidate `json:"album"`
	Artists    []ArtistRef    `json:"artists,omitempty"`
}

// Client is the catalog query boundary the core consumes. Implementations
// return typed candidate records; nothing past this boundary handles raw
// API payloads.
type Client interface {
	// SearchArtists returns up to limit artist candidates for a name query,
	// in the catalog's own relevance order.
	SearchArtists(ctx context.Context, name string, limit int) ([]ArtistCandidate, error)

	// SearchTracks returns up to limit track candidates for an artist+track
	// name query, in the catalog's own relevance order.
	SearchTracks(ctx context.Context, artistName, trackName string, limit int) ([]TrackCandidate, error)

	// AlbumsByArtist lists an artist's albums by the catalog's external id.
	AlbumsByArtist(ctx context.Context, externalID string, limit int) ([]AlbumCandidate, error)

	// TracksByAlbum lists an album's tracks by the catalog's external id.
	// Each candidate carries the album summary.
	TracksByAlbum(ctx context.Context, externalID string) ([]TrackCandidate, error)
}

// ErrUnavailable indicates a catalog call failed at the transport or service
// level (network error, non-200, rate limited).
type ErrUnavailable struct {
	Op    string
	Cause error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("catalog %s unavailable: %v", e.Op, e.Cause)
}

func (e *ErrUnavailable) Unwrap() error { return e.Cause }

// ErrNotFound indicates the catalog has no resource for the requested id.
type ErrNotFound struct {
	Op string
	ID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("catalog %s: %s not found", e.Op, e.ID)
}

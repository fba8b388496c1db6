package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/wconley/cratedig/internal/catalog"
	"github.com/wconley/cratedig/internal/resolve"
	"github.com/wconley/cratedig/internal/store"
)

const (
	// trackSearchLimit caps track search results before the exact-name
	// filter is applied.
	trackSearchLimit = 10

	// albumPageSize is how many albums a discography fetch requests at
	// once.
	albumPageSize = 20
)

// CatalogReport summarizes a full-catalog ingestion run.
type CatalogReport struct {
	Albums  int `json:"albums"`
	Songs   int `json:"songs"`
	Skipped int `json:"skipped"`
}

// Service drives ingestion workflows: each fetch queries the catalog and
// hands every candidate to the resolver. Workflows run synchronously on
// the caller's goroutine.
type Service struct {
	store    *store.Store
	catalog  catalog.Client
	resolver *resolve.Resolver
	logger   *slog.Logger
}

// New creates an ingestion Service.
func New(st *store.Store, client catalog.Client, resolver *resolve.Resolver, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		catalog:  client,
		resolver: resolver,
		logger:   logger.With(slog.String("component", "ingest")),
	}
}

// FetchArtist resolves a single artist by name, creating it from the
// catalog when it is not yet known locally. Returns nil without error when
// the catalog has no exact match.
func (s *Service) FetchArtist(ctx context.Context, name string) (*store.Artist, error) {
	a, err := s.resolver.ResolveArtist(ctx, name)
	if err != nil {
		s.logger.Error("fetch artist failed", slog.String("name", name), slog.Any("error", err))
		return nil, err
	}
	if a == nil {
		s.logger.Info("artist not found in catalog", slog.String("name", name))
		return nil, nil
	}
	return a, nil
}

// FetchTrack searches the catalog for an artist+track pair and resolves
// the first candidate whose title matches exactly, ignoring case, along
// with its album and artists. A song already known locally is returned
// without querying the catalog. Returns nil without error when nothing
// matches.
func (s *Service) FetchTrack(ctx context.Context, artistName, trackName string) (*store.Song, error) {
	sg, err := s.store.FindSongByName(ctx, trackName)
	if err != nil {
		return nil, err
	}
	if sg != nil {
		return sg, nil
	}

	candidates, err := s.catalog.SearchTracks(ctx, artistName, trackName, trackSearchLimit)
	if err != nil {
		s.logger.Error("track search failed",
			slog.String("artist", artistName),
			slog.String("track", trackName),
			slog.Any("error", err))
		return nil, err
	}

	var match *catalog.TrackCandidate
	for i, cand := range candidates {
		if strings.EqualFold(cand.Name, trackName) {
			match = &candidates[i]
			break
		}
	}
	if match == nil {
		s.logger.Info("track not found in catalog",
			slog.String("artist", artistName),
			slog.String("track", trackName))
		return nil, nil
	}

	sg, err = s.resolver.ResolveTrack(ctx, *match)
	if err != nil {
		s.logger.Error("track resolution failed",
			slog.String("track", match.Name),
			slog.Any("error", err))
		return nil, err
	}
	return sg, nil
}

// FetchDiscography resolves an artist and every album in its catalog
// discography. Returns a nil slice without error when the artist has no
// exact catalog match; an artist the catalog knows but assigns no id gets
// an empty, non-nil slice.
func (s *Service) FetchDiscography(ctx context.Context, artistName string) ([]store.Album, error) {
	a, err := s.resolver.ResolveArtist(ctx, artistName)
	if err != nil {
		s.logger.Error("fetch discography failed", slog.String("artist", artistName), slog.Any("error", err))
		return nil, err
	}
	if a == nil {
		s.logger.Info("artist not found in catalog", slog.String("name", artistName))
		return nil, nil
	}

	a, err = s.resolver.EnsureExternalID(ctx, a)
	if err != nil {
		s.logger.Error("external id backfill failed", slog.String("artist", a.Name), slog.Any("error", err))
		return nil, err
	}
	if a.ExternalID == "" {
		s.logger.Warn("artist has no catalog id, cannot list albums", slog.String("artist", a.Name))
		return []store.Album{}, nil
	}

	candidates, err := s.catalog.AlbumsByArtist(ctx, a.ExternalID, albumPageSize)
	if err != nil {
		s.logger.Error("album listing failed",
			slog.String("artist", a.Name),
			slog.String("external_id", a.ExternalID),
			slog.Any("error", err))
		return nil, err
	}

	albums := make([]store.Album, 0, len(candidates))
	for _, cand := range candidates {
		al, err := s.resolver.ResolveAlbum(ctx, cand)
		if err != nil {
			s.logger.Error("album resolution failed",
				slog.String("album", cand.Name),
				slog.Any("error", err))
			return nil, err
		}
		albums = append(albums, *al)
	}

	s.logger.Info("discography resolved",
		slog.String("artist", a.Name),
		slog.Int("albums", len(albums)))
	return albums, nil
}

// FetchFullCatalog resolves an artist's discography and every track on
// each of its albums. Tracks the store rejects as invalid are skipped and
// counted; catalog and consistency failures abort the run. Returns nil
// without error when the artist has no exact catalog match.
func (s *Service) FetchFullCatalog(ctx context.Context, artistName string) (*CatalogReport, error) {
	albums, err := s.FetchDiscography(ctx, artistName)
	if err != nil {
		return nil, err
	}
	if albums == nil {
		return nil, nil
	}

	report := &CatalogReport{Albums: len(albums)}
	for _, al := range albums {
		if al.ExternalID == "" {
			s.logger.Warn("album has no catalog id, skipping tracks", slog.String("album", al.Name))
			continue
		}

		tracks, err := s.catalog.TracksByAlbum(ctx, al.ExternalID)
		if err != nil {
			s.logger.Error("track listing failed",
				slog.String("album", al.Name),
				slog.String("external_id", al.ExternalID),
				slog.Any("error", err))
			return nil, err
		}

		for _, cand := range tracks {
			if _, err := s.resolver.ResolveTrack(ctx, cand); err != nil {
				if errors.Is(err, store.ErrValidation) {
					s.logger.Warn("skipping invalid track",
						slog.String("track", cand.Name),
						slog.String("album", al.Name),
						slog.Any("error", err))
					report.Skipped++
					continue
				}
				s.logger.Error("track resolution failed",
					slog.String("track", cand.Name),
					slog.Any("error", err))
				return nil, err
			}
			report.Songs++
		}
	}

	s.logger.Info("full catalog resolved",
		slog.String("artist", artistName),
		slog.Int("albums", report.Albums),
		slog.Int("songs", report.Songs),
		slog.Int("skipped", report.Skipped))
	return report, nil
}

package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wconley/cratedig/internal/catalog"
	"github.com/wconley/cratedig/internal/store"
)

// searchLimit caps how many candidates a catalog search may return before
// the exact-name filter is applied.
const searchLimit = 10

// placeholderGenre is the catalog's marker for an unknown genre; it never
// becomes a row.
const placeholderGenre = "-"

// ErrConsistency reports that a create conflicted with an existing row but
// the disambiguation lookup found nothing. The store promises at least one
// row exists in that branch, so this indicates corrupted or unexpectedly
// shaped data and must propagate.
var ErrConsistency = errors.New("store consistency violated")

// Resolver finds-or-creates canonical local entities for catalog names and
// candidates, resolving nested dependencies bottom-up (genres before
// artists, artists before albums, albums before songs).
type Resolver struct {
	store   *store.Store
	catalog catalog.Client
	logger  *slog.Logger
}

// New creates a Resolver.
func New(st *store.Store, client catalog.Client, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:   st,
		catalog: client,
		logger:  logger.With(slog.String("component", "resolver")),
	}
}

// ResolveGenre returns the canonical genre for a name, creating it on first
// sight. Empty and placeholder names resolve to nil without error.
func (r *Resolver) ResolveGenre(ctx context.Context, name string) (*store.Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == placeholderGenre {
		return nil, nil
	}

	g, _, err := r.store.GetOrCreateGenre(ctx, name)
	if errors.Is(err, store.ErrConflict) {
		g, err = r.store.FindGenreByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if g == nil {
			return nil, fmt.Errorf("%w: genre %q conflicted but no row matches", ErrConsistency, name)
		}
		return g, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ResolveArtist returns the canonical artist for a name. A local artist
// matching the name case-insensitively short-circuits the catalog query
// entirely; otherwise the catalog is searched and the first exact
// case-insensitive match becomes the canonical row, with its genres
// resolved first. Returns nil without error when the catalog has no exact
// match (soft not-found).
func (r *Resolver) ResolveArtist(ctx context.Context, name string) (*store.Artist, error) {
	a, err := r.store.FindArtistByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}

	cand, err := r.searchArtist(ctx, name)
	if err != nil {
		return nil, err
	}
	if cand == nil {
		return nil, nil
	}

	return r.upsertArtistCandidate(ctx, *cand)
}

// EnsureExternalID backfills a catalog id onto an artist created from a
// nested reference before its id was known, attaching genres discovered in
// the same catalog lookup. Artists that already carry an id are returned
// unchanged; an artist the catalog cannot match exactly is returned as-is
// with an empty id.
func (r *Resolver) EnsureExternalID(ctx context.Context, a *store.Artist) (*store.Artist, error) {
	if a.ExternalID != "" {
		return a, nil
	}

	cand, err := r.searchArtist(ctx, a.Name)
	if err != nil {
		return nil, err
	}
	if cand == nil {
		return a, nil
	}

	if err := r.store.SetArtistExternalID(ctx, a.ID, cand.ExternalID); err != nil {
		return nil, err
	}
	a.ExternalID = cand.ExternalID

	genreIDs, err := r.resolveGenres(ctx, cand.Genres)
	if err != nil {
		return nil, err
	}
	if err := r.store.AddArtistGenres(ctx, a.ID, genreIDs); err != nil {
		return nil, err
	}

	return a, nil
}

// ResolveAlbum returns the canonical album for a catalog candidate,
// resolving its artist set first. Albums sharing a name are disambiguated
// by the resolved artist set.
func (r *Resolver) ResolveAlbum(ctx context.Context, cand catalog.AlbumCandidate) (*store.Album, error) {
	artistIDs, err := r.resolveArtistRefs(ctx, cand.Artists)
	if err != nil {
		return nil, err
	}

	releaseDate := ""
	if cand.ReleaseDate != "" {
		releaseDate, err = store.NormalizeReleaseDate(cand.ReleaseDate)
		if err != nil {
			return nil, err
		}
	}

	albumType := cand.AlbumType
	if albumType == "" {
		albumType = "album"
	}

	al, created, err := r.store.GetOrCreateAlbum(ctx, cand.Name, albumType, releaseDate, cand.ExternalID)
	if errors.Is(err, store.ErrConflict) {
		al, err = r.store.FindAlbumByNameAndArtists(ctx, cand.Name, artistIDs)
		if err != nil {
			return nil, err
		}
		if al == nil {
			return nil, fmt.Errorf("%w: album %q conflicted but no row matches", ErrConsistency, cand.Name)
		}
	} else if err != nil {
		return nil, err
	}

	if err := r.store.AddAlbumArtists(ctx, al.ID, artistIDs); err != nil {
		return nil, err
	}

	if created {
		r.logger.Info("created album",
			slog.String("name", al.Name),
			slog.String("release_date", al.ReleaseDate),
			slog.Int("artists", len(artistIDs)))
	}

	return al, nil
}

// ResolveTrack returns the canonical song for a catalog candidate. The
// album (and through it the album's artists and their genres) is resolved
// first, then the track's own artist list, then the song row itself.
func (r *Resolver) ResolveTrack(ctx context.Context, cand catalog.TrackCandidate) (*store.Song, error) {
	if err := store.ValidatePopularity(cand.Popularity); err != nil {
		return nil, err
	}

	albumCand := cand.Album
	if albumCand.Name == "" {
		// Unmatched tracks still need an owning album.
		albumCand.Name = cand.Name
		albumCand.AlbumType = "single"
		albumCand.Artists = cand.Artists
	}

	al, err := r.ResolveAlbum(ctx, albumCand)
	if err != nil {
		return nil, err
	}

	artistIDs, err := r.resolveArtistRefs(ctx, cand.Artists)
	if err != nil {
		return nil, err
	}

	sg, created, err := r.store.GetOrCreateSong(ctx, cand.Name, al.ID, al.ReleaseDate, cand.Popularity)
	if errors.Is(err, store.ErrConflict) {
		sg, err = r.store.FindSongByNameAndAlbum(ctx, cand.Name, al.ID)
		if err != nil {
			return nil, err
		}
		if sg == nil {
			return nil, fmt.Errorf("%w: song %q conflicted but no row matches", ErrConsistency, cand.Name)
		}
	} else if err != nil {
		return nil, err
	}

	if err := r.store.AddSongArtists(ctx, sg.ID, artistIDs); err != nil {
		return nil, err
	}

	if created {
		r.logger.Info("created song",
			slog.String("name", sg.Name),
			slog.String("album", al.Name),
			slog.Int("artists", len(artistIDs)))
	}

	return sg, nil
}

// searchArtist queries the catalog and returns the first candidate whose
// name matches the query exactly, ignoring case. The catalog's own ranking
// is trusted; candidates are not re-ranked. Returns nil when nothing
// matches.
func (r *Resolver) searchArtist(ctx context.Context, name string) (*catalog.ArtistCandidate, error) {
	candidates, err := r.catalog.SearchArtists(ctx, name, searchLimit)
	if err != nil {
		return nil, err
	}

	for _, cand := range candidates {
		if strings.EqualFold(cand.Name, name) {
			return &cand, nil
		}
	}

	r.logger.Info("no exact catalog match for artist", slog.String("name", name))
	return nil, nil
}

// upsertArtistCandidate persists a catalog artist candidate, resolving its
// genres first and backfilling the external id on a pre-existing row that
// was created without one.
func (r *Resolver) upsertArtistCandidate(ctx context.Context, cand catalog.ArtistCandidate) (*store.Artist, error) {
	genreIDs, err := r.resolveGenres(ctx, cand.Genres)
	if err != nil {
		return nil, err
	}

	a, created, err := r.store.GetOrCreateArtist(ctx, cand.Name, cand.ExternalID)
	if errors.Is(err, store.ErrConflict) {
		a, err = r.store.FindArtistByName(ctx, cand.Name)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, fmt.Errorf("%w: artist %q conflicted but no row matches", ErrConsistency, cand.Name)
		}
	} else if err != nil {
		return nil, err
	}

	if a.ExternalID == "" && cand.ExternalID != "" {
		if err := r.store.SetArtistExternalID(ctx, a.ID, cand.ExternalID); err != nil {
			return nil, err
		}
		a.ExternalID = cand.ExternalID
	}

	if err := r.store.AddArtistGenres(ctx, a.ID, genreIDs); err != nil {
		return nil, err
	}

	if created {
		r.logger.Info("created artist",
			slog.String("name", a.Name),
			slog.String("external_id", a.ExternalID),
			slog.Int("genres", len(genreIDs)))
	}

	return a, nil
}

// resolveGenres resolves each genre name, skipping empties and
// placeholders. A fresh slice is built per call.
func (r *Resolver) resolveGenres(ctx context.Context, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		g, err := r.ResolveGenre(ctx, name)
		if err != nil {
			return nil, err
		}
		if g == nil {
			continue
		}
		ids = append(ids, g.ID)
	}
	return ids, nil
}

// resolveArtistRefs resolves each referenced artist through the full artist
// resolver; references the catalog cannot match are skipped so the
// enclosing album or song is still created without them. A fresh slice is
// built per call.
func (r *Resolver) resolveArtistRefs(ctx context.Context, refs []catalog.ArtistRef) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Name == "" {
			continue
		}
		a, err := r.ResolveArtist(ctx, ref.Name)
		if err != nil {
			return nil, err
		}
		if a == nil {
			r.logger.Info("skipping unresolved artist reference", slog.String("name", ref.Name))
			continue
		}
		if a.ExternalID == "" && ref.ExternalID != "" {
			if err := r.store.SetArtistExternalID(ctx, a.ID, ref.ExternalID); err != nil {
				return nil, err
			}
			a.ExternalID = ref.ExternalID
		}
		ids = append(ids, a.ID)
	}
	return ids, nil
}

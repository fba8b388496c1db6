package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const artistColumns = `id, name, external_id, created_at, updated_at`

// GetOrCreateArtist returns the artist matching the (name, external id)
// natural key, creating it if absent. A uniqueness violation that the
// check-and-insert cannot reconcile surfaces as ErrConflict; callers recover
// through FindArtistByName.
func (s *Store) GetOrCreateArtist(ctx context.Context, name, externalID string) (*Artist, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE name = ? AND external_id = ?`,
		name, externalID)
	a, err := scanArtist(row)
	if err == nil {
		return a, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("checking for artist: %w", err)
	}

	a = &Artist{
		ID:         uuid.New().String(),
		Name:       name,
		ExternalID: externalID,
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO artists (id, name, external_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.Name, a.ExternalID, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, false, fmt.Errorf("creating artist %q: %w", name, ErrConflict)
		}
		return nil, false, fmt.Errorf("creating artist: %w", err)
	}
	return a, true, nil
}

// GetArtist retrieves an artist by primary key.
func (s *Store) GetArtist(ctx context.Context, id string) (*Artist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE id = ?`, id)
	a, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artist not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting artist by id: %w", err)
	}
	return a, nil
}

// FindArtistByName returns the first artist matching name case-insensitively
// in creation order, or nil if none exists. This is both the resolver's
// short-circuit probe and its disambiguation fallback.
func (s *Store) FindArtistByName(ctx context.Context, name string) (*Artist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE name = ? COLLATE NOCASE ORDER BY created_at, id LIMIT 1`,
		name)
	a, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding artist by name: %w", err)
	}
	return a, nil
}

// SetArtistExternalID backfills the external id on an artist created before
// the catalog identifier was known. The only scalar mutation in the store.
func (s *Store) SetArtistExternalID(ctx context.Context, id, externalID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`UPDATE artists SET external_id = ?, updated_at = ? WHERE id = ?`,
		externalID, now, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("setting external id on artist %s: %w", id, ErrConflict)
		}
		return fmt.Errorf("setting artist external id: %w", err)
	}
	return nil
}

// ListArtists returns all artists ordered by name.
func (s *Store) ListArtists(ctx context.Context) ([]Artist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+artistColumns+` FROM artists ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing artists: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return collectArtists(rows)
}

// AddArtistGenres links genres to an artist. Additive and idempotent;
// existing links are left untouched.
func (s *Store) AddArtistGenres(ctx context.Context, artistID string, genreIDs []string) error {
	if len(genreIDs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, gid := range genreIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO artist_genres (artist_id, genre_id) VALUES (?, ?)`,
			artistID, gid); err != nil {
			return fmt.Errorf("linking genre %s to artist %s: %w", gid, artistID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing genre links: %w", err)
	}
	return nil
}

// ArtistsByAlbum returns the artists linked to an album, ordered by name.
func (s *Store) ArtistsByAlbum(ctx context.Context, albumID string) ([]Artist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.external_id, a.created_at, a.updated_at
		FROM artists a
		JOIN album_artists aa ON aa.artist_id = a.id
		WHERE aa.album_id = ?
		ORDER BY a.name
	`, albumID)
	if err != nil {
		return nil, fmt.Errorf("listing artists for album: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return collectArtists(rows)
}

// ArtistsBySong returns the artists linked to a song, ordered by name.
func (s *Store) ArtistsBySong(ctx context.Context, songID string) ([]Artist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.external_id, a.created_at, a.updated_at
		FROM artists a
		JOIN song_artists sa ON sa.artist_id = a.id
		WHERE sa.song_id = ?
		ORDER BY a.name
	`, songID)
	if err != nil {
		return nil, fmt.Errorf("listing artists for song: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return collectArtists(rows)
}

func collectArtists(rows *sql.Rows) ([]Artist, error) {
	var artists []Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning artist row: %w", err)
		}
		artists = append(artists, *a)
	}
	return artists, rows.Err()
}

func scanArtist(row scanner) (*Artist, error) {
	var a Artist
	var createdAt, updatedAt string
	if err := row.Scan(&a.ID, &a.Name, &a.ExternalID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return &a, nil
}

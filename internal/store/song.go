package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const songColumns = `id, name, album_id, release_date, popularity, created_at, updated_at`

// GetOrCreateSong returns the song matching the (name, release date,
// popularity) create key, creating it if absent. Popularity is validated
// against [0,100] before the write; a non-empty release date must already
// be normalized.
func (s *Store) GetOrCreateSong(ctx context.Context, name, albumID, releaseDate string, popularity int) (*Song, bool, error) {
	if err := ValidatePopularity(popularity); err != nil {
		return nil, false, err
	}
	if releaseDate != "" && !fullDate.MatchString(releaseDate) {
		return nil, false, fmt.Errorf("%w: malformed release date %q", ErrValidation, releaseDate)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE name = ? AND release_date = ? AND popularity = ?`,
		name, releaseDate, popularity)
	sg, err := scanSong(row)
	if err == nil {
		return sg, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("checking for song: %w", err)
	}

	sg = &Song{
		ID:          uuid.New().String(),
		Name:        name,
		AlbumID:     albumID,
		ReleaseDate: releaseDate,
		Popularity:  popularity,
	}
	now := time.Now().UTC()
	sg.CreatedAt = now
	sg.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO songs (id, name, album_id, release_date, popularity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sg.ID, sg.Name, sg.AlbumID, sg.ReleaseDate, sg.Popularity,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, false, fmt.Errorf("creating song %q: %w", name, ErrConflict)
		}
		return nil, false, fmt.Errorf("creating song: %w", err)
	}
	return sg, true, nil
}

// GetSong retrieves a song by primary key.
func (s *Store) GetSong(ctx context.Context, id string) (*Song, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	sg, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("song not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting song by id: %w", err)
	}
	return sg, nil
}

// FindSongByNameAndAlbum returns the first song matching name
// case-insensitively within the given album, or nil if none exists. This is
// the disambiguation lookup after a create conflict.
func (s *Store) FindSongByNameAndAlbum(ctx context.Context, name, albumID string) (*Song, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE name = ? COLLATE NOCASE AND album_id = ? ORDER BY created_at, id LIMIT 1`,
		name, albumID)
	sg, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding song by name and album: %w", err)
	}
	return sg, nil
}

// FindSongByName returns the first song matching name case-insensitively in
// creation order, or nil if none exists.
func (s *Store) FindSongByName(ctx context.Context, name string) (*Song, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE name = ? COLLATE NOCASE ORDER BY created_at, id LIMIT 1`,
		name)
	sg, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding song by name: %w", err)
	}
	return sg, nil
}

// ListSongs returns all songs ordered by name.
func (s *Store) ListSongs(ctx context.Context) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+songColumns+` FROM songs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return collectSongs(rows)
}

// SongsByAlbum returns the songs belonging to an album, ordered by name.
func (s *Store) SongsByAlbum(ctx context.Context, albumID string) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE album_id = ? ORDER BY name`, albumID)
	if err != nil {
		return nil, fmt.Errorf("listing songs for album: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return collectSongs(rows)
}

// SongsByArtist returns the songs linked to an artist, ordered by name.
func (s *Store) SongsByArtist(ctx context.Context, artistID string) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sg.id, sg.name, sg.album_id, sg.release_date, sg.popularity, sg.created_at, sg.updated_at
		FROM songs sg
		JOIN song_artists sa ON sa.song_id = sg.id
		WHERE sa.artist_id = ?
		ORDER BY sg.name
	`, artistID)
	if err != nil {
		return nil, fmt.Errorf("listing songs for artist: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return collectSongs(rows)
}

// AddSongArtists links artists to a song. Additive and idempotent.
func (s *Store) AddSongArtists(ctx context.Context, songID string, artistIDs []string) error {
	if len(artistIDs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, aid := range artistIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO song_artists (song_id, artist_id) VALUES (?, ?)`,
			songID, aid); err != nil {
			return fmt.Errorf("linking artist %s to song %s: %w", aid, songID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing song artist links: %w", err)
	}
	return nil
}

func collectSongs(rows *sql.Rows) ([]Song, error) {
	var songs []Song
	for rows.Next() {
		sg, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning song row: %w", err)
		}
		songs = append(songs, *sg)
	}
	return songs, rows.Err()
}

func scanSong(row scanner) (*Song, error) {
	var sg Song
	var createdAt, updatedAt string
	if err := row.Scan(&sg.ID, &sg.Name, &sg.AlbumID, &sg.ReleaseDate, &sg.Popularity, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	sg.CreatedAt = parseTime(createdAt)
	sg.UpdatedAt = parseTime(updatedAt)
	return &sg, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const albumColumns = `id, name, album_type, release_date, external_id, created_at, updated_at`

// GetOrCreateAlbum returns the album matching the (name, album type,
// external id) natural key, creating it if absent. A non-empty release
// date must already be normalized to YYYY-MM-DD; empty means the catalog
// did not supply one.
func (s *Store) GetOrCreateAlbum(ctx context.Context, name, albumType, releaseDate, externalID string) (*Album, bool, error) {
	if releaseDate != "" && !fullDate.MatchString(releaseDate) {
		return nil, false, fmt.Errorf("%w: malformed release date %q", ErrValidation, releaseDate)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+albumColumns+` FROM albums WHERE name = ? AND album_type = ? AND external_id = ?`,
		name, albumType, externalID)
	al, err := scanAlbum(row)
	if err == nil {
		return al, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("checking for album: %w", err)
	}

	al = &Album{
		ID:          uuid.New().String(),
		Name:        name,
		AlbumType:   albumType,
		ReleaseDate: releaseDate,
		ExternalID:  externalID,
	}
	now := time.Now().UTC()
	al.CreatedAt = now
	al.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO albums (id, name, album_type, release_date, external_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, al.ID, al.Name, al.AlbumType, al.ReleaseDate, al.ExternalID,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, false, fmt.Errorf("creating album %q: %w", name, ErrConflict)
		}
		return nil, false, fmt.Errorf("creating album: %w", err)
	}
	return al, true, nil
}

// GetAlbum retrieves an album by primary key.
func (s *Store) GetAlbum(ctx context.Context, id string) (*Album, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+albumColumns+` FROM albums WHERE id = ?`, id)
	al, err := scanAlbum(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("album not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting album by id: %w", err)
	}
	return al, nil
}

// FindAlbumByName returns the first album matching name case-insensitively
// in creation order, or nil if none exists.
func (s *Store) FindAlbumByName(ctx context.Context, name string) (*Album, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+albumColumns+` FROM albums WHERE name = ? COLLATE NOCASE ORDER BY created_at, id LIMIT 1`,
		name)
	al, err := scanAlbum(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding album by name: %w", err)
	}
	return al, nil
}

// FindAlbumByNameAndArtists returns the first album matching name
// case-insensitively whose artist set contains any of the given artists.
// This is the disambiguation lookup for the same album name recurring under
// different artists. An empty artist set degrades to FindAlbumByName.
func (s *Store) FindAlbumByNameAndArtists(ctx context.Context, name string, artistIDs []string) (*Album, error) {
	if len(artistIDs) == 0 {
		return s.FindAlbumByName(ctx, name)
	}

	placeholders := strings.Repeat("?,", len(artistIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(artistIDs)+1)
	args = append(args, name)
	for _, id := range artistIDs {
		args = append(args, id)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+albumColumns+` FROM albums
		WHERE name = ? COLLATE NOCASE
		AND id IN (SELECT album_id FROM album_artists WHERE artist_id IN (`+placeholders+`))
		ORDER BY created_at, id LIMIT 1
	`, args...)
	al, err := scanAlbum(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding album by name and artists: %w", err)
	}
	return al, nil
}

// ListAlbums returns all albums ordered by name.
func (s *Store) ListAlbums(ctx context.Context) ([]Album, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+albumColumns+` FROM albums ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return collectAlbums(rows)
}

// AlbumsByArtist returns the albums linked to an artist, ordered by release
// date then name.
func (s *Store) AlbumsByArtist(ctx context.Context, artistID string) ([]Album, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT al.id, al.name, al.album_type, al.release_date, al.external_id, al.created_at, al.updated_at
		FROM albums al
		JOIN album_artists aa ON aa.album_id = al.id
		WHERE aa.artist_id = ?
		ORDER BY al.release_date, al.name
	`, artistID)
	if err != nil {
		return nil, fmt.Errorf("listing albums for artist: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return collectAlbums(rows)
}

// AddAlbumArtists links artists to an album. Additive and idempotent.
func (s *Store) AddAlbumArtists(ctx context.Context, albumID string, artistIDs []string) error {
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
			`INSERT OR IGNORE INTO album_artists (album_id, artist_id) VALUES (?, ?)`,
			albumID, aid); err != nil {
			return fmt.Errorf("linking artist %s to album %s: %w", aid, albumID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing album artist links: %w", err)
	}
	return nil
}

// DeleteAlbum removes an album by ID. Its songs are removed by cascade.
func (s *Store) DeleteAlbum(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM albums WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting album: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("album not found: %s", id)
	}
	return nil
}

func collectAlbums(rows *sql.Rows) ([]Album, error) {
	var albums []Album
	for rows.Next() {
		al, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning album row: %w", err)
		}
		albums = append(albums, *al)
	}
	return albums, rows.Err()
}

func scanAlbum(row scanner) (*Album, error) {
	var al Album
	var createdAt, updatedAt string
	if err := row.Scan(&al.ID, &al.Name, &al.AlbumType, &al.ReleaseDate, &al.ExternalID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	al.CreatedAt = parseTime(createdAt)
	al.UpdatedAt = parseTime(updatedAt)
	return &al, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const genreColumns = `id, name, created_at, updated_at`

// GetOrCreateGenre returns the genre with the given name, creating it if it
// does not exist. The lookup is case-insensitive; storage keeps the first
// spelling seen.
func (s *Store) GetOrCreateGenre(ctx context.Context, name string) (*Genre, bool, error) {
	g, err := s.FindGenreByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if g != nil {
		return g, false, nil
	}

	g = &Genre{
		ID:   uuid.New().String(),
		Name: name,
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO genres (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, g.ID, g.Name, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, false, fmt.Errorf("creating genre %q: %w", name, ErrConflict)
		}
		return nil, false, fmt.Errorf("creating genre: %w", err)
	}
	return g, true, nil
}

// FindGenreByName returns the first genre matching name case-insensitively,
// or nil if none exists.
func (s *Store) FindGenreByName(ctx context.Context, name string) (*Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE name = ? COLLATE NOCASE ORDER BY created_at, id LIMIT 1`,
		name)
	g, err := scanGenre(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding genre by name: %w", err)
	}
	return g, nil
}

// ListGenres returns all genres ordered by name.
func (s *Store) ListGenres(ctx context.Context) ([]Genre, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+genreColumns+` FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing genres: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var genres []Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning genre row: %w", err)
		}
		genres = append(genres, *g)
	}
	return genres, rows.Err()
}

// GenresByArtist returns the genres linked to an artist, ordered by name.
func (s *Store) GenresByArtist(ctx context.Context, artistID string) ([]Genre, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.created_at, g.updated_at
		FROM genres g
		JOIN artist_genres ag ON ag.genre_id = g.id
		WHERE ag.artist_id = ?
		ORDER BY g.name
	`, artistID)
	if err != nil {
		return nil, fmt.Errorf("listing genres for artist: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var genres []Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning genre row: %w", err)
		}
		genres = append(genres, *g)
	}
	return genres, rows.Err()
}

func scanGenre(row scanner) (*Genre, error) {
	var g Genre
	var createdAt, updatedAt string
	if err := row.Scan(&g.ID, &g.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	g.CreatedAt = parseTime(createdAt)
	g.UpdatedAt = parseTime(updatedAt)
	return &g, nil
}

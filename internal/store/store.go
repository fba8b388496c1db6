package store

import (
	"database/sql"
	"time"
)

// Store provides persistence for genres, artists, albums, songs, and the
// relationship graph between them. All mutations happen through the typed
// get-or-create and relationship operations; rows are never renamed or
// edited in place, except for backfilling an artist's external id.
type Store struct {
	db *sql.DB
}

// New creates a Store backed by the given database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// parseTime parses a time string, handling both RFC3339 and SQLite datetime
// formats.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

type scanner interface{ Scan(...any) error }

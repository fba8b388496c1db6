package store

import (
	"fmt"
	"regexp"
	"time"
)

// Genre is a music genre referenced by artists.
type Genre struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Artist is a music artist or group. ExternalID is the catalog's own
// identifier and may be empty for artists created from nested references.
type Artist struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ExternalID string    `json:"external_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Album is a release owning zero or more songs.
type Album struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AlbumType   string    `json:"album_type"`
	ReleaseDate string    `json:"release_date"`
	ExternalID  string    `json:"external_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Song is a track belonging to exactly one album.
type Song struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AlbumID     string    `json:"album_id"`
	ReleaseDate string    `json:"release_date"`
	Popularity  int       `json:"popularity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	yearOnly  = regexp.MustCompile(`^\d{4}$`)
	yearMonth = regexp.MustCompile(`^\d{4}-\d{2}$`)
	fullDate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// NormalizeReleaseDate pads partial catalog dates to YYYY-MM-DD. Year-only
// dates become YYYY-01-01 and year-month dates become YYYY-MM-01. Anything
// else that is not already a full date is a validation error.
func NormalizeReleaseDate(date string) (string, error) {
	switch {
	case fullDate.MatchString(date):
		return date, nil
	case yearOnly.MatchString(date):
		return date + "-01-01", nil
	case yearMonth.MatchString(date):
		return date + "-01", nil
	default:
		return "", fmt.Errorf("%w: malformed release date %q", ErrValidation, date)
	}
}

// ValidatePopularity checks that a popularity score is within [0,100].
// Out-of-range values are rejected, never clamped.
func ValidatePopularity(popularity int) error {
	if popularity < 0 || popularity > 100 {
		return fmt.Errorf("%w: popularity %d out of range [0,100]", ErrValidation, popularity)
	}
	return nil
}

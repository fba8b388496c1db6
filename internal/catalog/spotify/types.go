package spotify

// searchResponse is the JSON response from the search endpoint. Only the
// sections matching the requested type are populated.
type searchResponse struct {
	Artists *artistPage `json:"artists,omitempty"`
	Tracks  *trackPage  `json:"tracks,omitempty"`
}

type artistPage struct {
	Items []artistObject `json:"items"`
	Total int            `json:"total"`
}

type albumPage struct {
	Items []albumObject `json:"items"`
	Total int           `json:"total"`
}

type trackPage struct {
	Items []trackObject `json:"items"`
	Total int           `json:"total"`
}

// artistObject is a full or simplified artist resource. Simplified variants
// (inside albums and tracks) omit genres.
type artistObject struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres,omitempty"`
}

// albumObject is a full or simplified album resource. The track listing is
// present only on the full album endpoint.
type albumObject struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	AlbumType   string         `json:"album_type"`
	ReleaseDate string         `json:"release_date"`
	Artists     []artistObject `json:"artists,omitempty"`
	Tracks      *trackPage     `json:"tracks,omitempty"`
}

// trackObject is a full or simplified track resource. Simplified variants
// (inside an album's track listing) omit the album and popularity.
type trackObject struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Popularity int            `json:"popularity"`
	Album      *albumObject   `json:"album,omitempty"`
	Artists    []artistObject `json:"artists,omitempty"`
}

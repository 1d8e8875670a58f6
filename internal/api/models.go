package api

import (
	"errors"
	"fmt"
)

// Enrichment is what a track-info lookup adds to a parsed file name.
type Enrichment struct {
	AlbumArtURL string `json:"album_art_url"`
}

// HasArt reports whether a cover URL was found.
func (e Enrichment) HasArt() bool {
	return e.AlbumArtURL != ""
}

var (
	// ErrNoTrackInfo means the service returned no track object at all.
	ErrNoTrackInfo = errors.New("no track information")
	// ErrNoArtwork means the track exists but has no image at the wanted index.
	ErrNoArtwork = errors.New("no track art at this index")
)

// StatusError is returned for any non-200 reply.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error: %s", e.Status)
}

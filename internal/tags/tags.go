// Package tags reads and rewrites embedded metadata in audio containers.
//
// Callers work with logical field names; each container backend maps them to
// its native keys (Vorbis comment names for Ogg and FLAC, ID3v2 frame IDs for
// MP3). Open picks the backend from the file extension.
package tags

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Field is a container-independent tag name.
type Field string

const (
	Album       Field = "album"
	AlbumArtist Field = "albumartist"
	Artist      Field = "artist"
	Artwork     Field = "artwork"
	Comment     Field = "comment"
	Compilation Field = "compilation"
	Composer    Field = "composer"
	DiscNumber  Field = "discnumber"
	Genre       Field = "genre"
	Lyrics      Field = "lyrics"
	TotalDiscs  Field = "totaldiscs"
	TotalTracks Field = "totaltracks"
	TrackNumber Field = "tracknumber"
	TrackTitle  Field = "tracktitle"
	Year        Field = "year"
	ISRC        Field = "isrc"

	// Title is an alias for TrackTitle.
	Title = TrackTitle
)

// Fields lists every field a backend knows how to clear.
var Fields = []Field{
	Album, AlbumArtist, Artist, Artwork, Comment, Compilation, Composer,
	DiscNumber, Genre, Lyrics, TotalDiscs, TotalTracks, TrackNumber,
	TrackTitle, Year, ISRC,
}

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrOpen              = errors.New("failed to read tags")
	ErrSave              = errors.New("failed to save tags")
)

// File is the mutable tag set of one audio file. Changes are held in memory
// until Save.
type File interface {
	Path() string
	Get(f Field) string
	Remove(f Field)
	Set(f Field, value string)
	// SetArtwork replaces all embedded pictures with a front cover.
	SetArtwork(data []byte)
	Save() error
	Close() error
}

// Opener opens the tag set of the file at path.
type Opener func(path string) (File, error)

var openers = map[string]Opener{
	".opus": openTaglib,
	".ogg":  openTaglib,
	".flac": openFLAC,
	".mp3":  openMP3,
}

// Open dispatches on the file extension.
func Open(path string) (File, error) {
	open, ok := openers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return open(path)
}

// Supported reports whether ext (with leading dot) has a backend.
func Supported(ext string) bool {
	_, ok := openers[strings.ToLower(ext)]
	return ok
}

// TrimExt strips a supported audio extension from name. Other suffixes are
// kept, so "A - B (feat. C)" survives intact.
func TrimExt(name string) string {
	base := filepath.Base(name)
	if ext := filepath.Ext(base); Supported(ext) {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

// Extensions returns the supported extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(openers))
	for ext := range openers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// vorbisKeys maps fields to Vorbis comment names. The first key is the one
// written; all of them are cleared.
var vorbisKeys = map[Field][]string{
	Album:       {"ALBUM"},
	AlbumArtist: {"ALBUMARTIST"},
	Artist:      {"ARTIST"},
	Comment:     {"COMMENT", "DESCRIPTION"},
	Compilation: {"COMPILATION"},
	Composer:    {"COMPOSER"},
	DiscNumber:  {"DISCNUMBER"},
	Genre:       {"GENRE"},
	Lyrics:      {"LYRICS"},
	TotalDiscs:  {"DISCTOTAL", "TOTALDISCS"},
	TotalTracks: {"TRACKTOTAL", "TOTALTRACKS"},
	TrackNumber: {"TRACKNUMBER"},
	TrackTitle:  {"TITLE"},
	Year:        {"DATE", "YEAR"},
	ISRC:        {"ISRC"},
}

func artworkMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

const coverDescription = "Front cover"

// Package filename extracts track candidates from audio file names.
package filename

import (
	"path/filepath"
	"regexp"
	"strings"
)

// stemRegex matches "ARTIST - TITLE" with an optional trailing remix or
// featuring parenthetical. Artist and title are lazy so the first " - "
// separates them and the suffix is only taken when it closes the stem.
// Whitespace includes Unicode space separators such as NBSP.
var stemRegex = regexp.MustCompile(
	`^(?P<artist>.+?)[\s\p{Zs}]+-[\s\p{Zs}]+(?P<title>.+?)` +
		`(?:[\s\p{Zs}]+\((?P<remix>.+?)[\s\p{Zs}]*(?:Remix|\(.*?Remix.*?\))\)` +
		`|[\s\p{Zs}]+\((?:feat\.?|ft\.?|w/|w⧸)[\s\p{Zs}]*(?P<featured>.+?)\))?$`,
)

// artistSeparator splits a multi-artist field.
const artistSeparator = " & "

// Result is the outcome of parsing a file name: either Parsed or Unparsed.
type Result interface {
	result()
}

// Parsed is a track candidate recovered from a file name.
type Parsed struct {
	Artist   []string `json:"artist"`
	Title    string   `json:"title"`
	Remix    string   `json:"remix,omitempty"`
	Featured string   `json:"featured,omitempty"`
}

func (Parsed) result() {}

// Artists returns the artist sequence written to the tag: the split artist
// field followed by the remixer and the featured artist when present.
func (p Parsed) Artists() []string {
	out := make([]string, 0, len(p.Artist)+2)
	out = append(out, p.Artist...)
	if p.Remix != "" {
		out = append(out, p.Remix)
	}
	if p.Featured != "" {
		out = append(out, p.Featured)
	}
	return out
}

// Primary returns the first artist, the one used for lookups.
func (p Parsed) Primary() string {
	if len(p.Artist) == 0 {
		return ""
	}
	return p.Artist[0]
}

// Unparsed carries a name that did not match the pattern.
type Unparsed struct {
	Name string `json:"name"`
}

func (Unparsed) result() {}

// Parse matches a file name stem (extension already stripped).
func Parse(stem string) Result {
	m := stemRegex.FindStringSubmatch(stem)
	if m == nil {
		return Unparsed{Name: stem}
	}

	return Parsed{
		Artist:   strings.Split(m[stemRegex.SubexpIndex("artist")], artistSeparator),
		Title:    m[stemRegex.SubexpIndex("title")],
		Remix:    m[stemRegex.SubexpIndex("remix")],
		Featured: m[stemRegex.SubexpIndex("featured")],
	}
}

// Stem strips the directory and the final extension from a path.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParsePath parses the stem of path.
func ParsePath(path string) Result {
	return Parse(Stem(path))
}

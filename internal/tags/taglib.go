package tags

import (
	"fmt"
	"strings"

	"go.senan.xyz/taglib"
)

// taglibFile backs Ogg Opus and Ogg Vorbis through TagLib. The full property
// map is written back on Save with taglib.Clear so removed keys disappear.
type taglibFile struct {
	path   string
	props  map[string][]string
	dirty  bool
	art    []byte
	artSet bool
}

func openTaglib(path string) (File, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}

	props := make(map[string][]string, len(raw))
	for k, v := range raw {
		props[strings.ToUpper(k)] = v
	}

	return &taglibFile{path: path, props: props}, nil
}

func (t *taglibFile) Path() string { return t.path }

func (t *taglibFile) Get(f Field) string {
	for _, key := range vorbisKeys[f] {
		if vs := t.props[key]; len(vs) > 0 && vs[0] != "" {
			return vs[0]
		}
	}
	return ""
}

func (t *taglibFile) Remove(f Field) {
	if f == Artwork {
		t.art, t.artSet = nil, true
		return
	}
	for _, key := range vorbisKeys[f] {
		if _, ok := t.props[key]; ok {
			delete(t.props, key)
			t.dirty = true
		}
	}
}

func (t *taglibFile) Set(f Field, value string) {
	keys := vorbisKeys[f]
	if len(keys) == 0 {
		return
	}
	t.Remove(f)
	t.props[keys[0]] = []string{value}
	t.dirty = true
}

func (t *taglibFile) SetArtwork(data []byte) {
	t.art, t.artSet = data, true
}

func (t *taglibFile) Save() error {
	if t.dirty {
		if err := taglib.WriteTags(t.path, t.props, taglib.Clear); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrSave, t.path, err)
		}
		t.dirty = false
	}

	// WriteImage only replaces the first picture, so clear them all first
	if t.artSet {
		if err := taglib.WriteImage(t.path, nil); err != nil {
			return fmt.Errorf("%w: %s: artwork: %w", ErrSave, t.path, err)
		}
		if len(t.art) > 0 {
			if err := taglib.WriteImage(t.path, t.art); err != nil {
				return fmt.Errorf("%w: %s: artwork: %w", ErrSave, t.path, err)
			}
		}
		t.artSet = false
	}

	return nil
}

func (t *taglibFile) Close() error { return nil }

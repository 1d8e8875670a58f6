package tags

import (
	"fmt"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

type flacFile struct {
	path         string
	file         *flac.File
	cmt          *flacvorbis.MetaDataBlockVorbisComment
	dropPictures bool
	picture      []byte
}

func openFLAC(path string) (File, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse flac file: %w", ErrOpen, err)
	}

	var cmt *flacvorbis.MetaDataBlockVorbisComment
	for _, block := range f.Meta {
		if block.Type == flac.VorbisComment {
			cmt, err = flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to parse existing comments: %w", ErrOpen, err)
			}
			break
		}
	}

	if cmt == nil {
		cmt = flacvorbis.New()
	}

	return &flacFile{path: path, file: f, cmt: cmt}, nil
}

func (f *flacFile) Path() string { return f.path }

func (f *flacFile) Get(field Field) string {
	for _, key := range vorbisKeys[field] {
		for _, c := range f.cmt.Comments {
			k, v, ok := strings.Cut(c, "=")
			if ok && strings.EqualFold(k, key) && v != "" {
				return v
			}
		}
	}
	return ""
}

func (f *flacFile) Remove(field Field) {
	if field == Artwork {
		f.dropPictures = true
		f.picture = nil
		return
	}

	keys := vorbisKeys[field]
	kept := f.cmt.Comments[:0]
	for _, c := range f.cmt.Comments {
		k, _, _ := strings.Cut(c, "=")
		if !matchesAny(k, keys) {
			kept = append(kept, c)
		}
	}
	f.cmt.Comments = kept
}

func matchesAny(key string, keys []string) bool {
	for _, k := range keys {
		if strings.EqualFold(key, k) {
			return true
		}
	}
	return false
}

func (f *flacFile) Set(field Field, value string) {
	keys := vorbisKeys[field]
	if len(keys) == 0 {
		return
	}
	f.Remove(field)
	_ = f.cmt.Add(keys[0], value)
}

func (f *flacFile) SetArtwork(data []byte) {
	f.dropPictures = true
	f.picture = data
}

func (f *flacFile) Save() error {
	// 1. Vorbis comments: replace in place or append
	block := f.cmt.Marshal()
	replaced := false
	for i, b := range f.file.Meta {
		if b.Type == flac.VorbisComment {
			f.file.Meta[i] = &block
			replaced = true
			break
		}
	}
	if !replaced {
		f.file.Meta = append(f.file.Meta, &block)
	}

	// 2. Pictures
	if f.dropPictures {
		meta := f.file.Meta[:0]
		for _, b := range f.file.Meta {
			if b.Type != flac.Picture {
				meta = append(meta, b)
			}
		}
		f.file.Meta = meta
	}
	if len(f.picture) > 0 {
		pic := newPictureBlock(f.picture)
		f.file.Meta = append(f.file.Meta, &pic)
	}

	// 3. Save
	if err := f.file.Save(f.path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSave, f.path, err)
	}
	return nil
}

func (f *flacFile) Close() error { return nil }

// newPictureBlock builds a front-cover block. Images the decoder cannot size
// are still embedded, without dimensions.
func newPictureBlock(data []byte) flac.MetaDataBlock {
	mime := artworkMIME(data)
	pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, coverDescription, data, mime)
	if err != nil {
		pic = &flacpicture.MetadataBlockPicture{
			PictureType: flacpicture.PictureTypeFrontCover,
			MIME:        mime,
			Description: coverDescription,
			ImageData:   data,
		}
	}
	return pic.Marshal()
}

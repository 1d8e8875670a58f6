package tags

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// id3Frames maps fields to ID3v2 frame IDs. TRCK and TPOS carry both the
// number and the total, so clearing either clears the frame.
var id3Frames = map[Field][]string{
	Album:       {"TALB"},
	AlbumArtist: {"TPE2"},
	Artist:      {"TPE1"},
	Artwork:     {"APIC"},
	Comment:     {"COMM"},
	Compilation: {"TCMP"},
	Composer:    {"TCOM"},
	DiscNumber:  {"TPOS"},
	Genre:       {"TCON"},
	Lyrics:      {"USLT"},
	TotalDiscs:  {"TPOS"},
	TotalTracks: {"TRCK"},
	TrackNumber: {"TRCK"},
	TrackTitle:  {"TIT2"},
	Year:        {"TDRC", "TYER"},
	ISRC:        {"TSRC"},
}

type mp3File struct {
	path string
	tag  *id3v2.Tag
}

func openMP3(path string) (File, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open mp3 file: %w", ErrOpen, err)
	}
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	return &mp3File{path: path, tag: tag}, nil
}

func (m *mp3File) Path() string { return m.path }

func (m *mp3File) Get(f Field) string {
	ids := id3Frames[f]
	if len(ids) == 0 {
		return ""
	}

	switch f {
	case Comment:
		for _, fr := range m.tag.GetFrames("COMM") {
			if c, ok := fr.(id3v2.CommentFrame); ok && c.Text != "" {
				return c.Text
			}
		}
		return ""
	case Lyrics:
		for _, fr := range m.tag.GetFrames("USLT") {
			if l, ok := fr.(id3v2.UnsynchronisedLyricsFrame); ok && l.Lyrics != "" {
				return l.Lyrics
			}
		}
		return ""
	case Artwork:
		return ""
	}

	for _, id := range ids {
		if tf := m.tag.GetTextFrame(id); tf.Text != "" {
			return tf.Text
		}
	}
	return ""
}

func (m *mp3File) Remove(f Field) {
	for _, id := range id3Frames[f] {
		m.tag.DeleteFrames(id)
	}
}

func (m *mp3File) Set(f Field, value string) {
	ids := id3Frames[f]
	if len(ids) == 0 || f == Artwork {
		return
	}
	m.Remove(f)

	switch f {
	case Comment:
		m.tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     value,
		})
	case Lyrics:
		m.tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Lyrics:   value,
		})
	default:
		m.tag.AddTextFrame(ids[0], id3v2.EncodingUTF8, value)
	}
}

func (m *mp3File) SetArtwork(data []byte) {
	m.tag.DeleteFrames("APIC")
	if len(data) == 0 {
		return
	}
	m.tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    artworkMIME(data),
		PictureType: id3v2.PTFrontCover,
		Description: coverDescription,
		Picture:     data,
	})
}

func (m *mp3File) Save() error {
	if err := m.tag.Save(); err != nil {
		return fmt.Errorf("%w: failed to save mp3 tags: %w", ErrSave, err)
	}
	return nil
}

func (m *mp3File) Close() error {
	return m.tag.Close()
}

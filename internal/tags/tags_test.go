package tags

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-flac/go-flac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePNG carries the PNG signature so MIME sniffing sees an image.
var fakePNG = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 64)...)

// minimalFLAC is a stream marker, an empty STREAMINFO block flagged last and
// a few frame bytes.
func minimalFLAC() []byte {
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.Write([]byte{0x80, 0x00, 0x00, 0x22})
	buf.Write(make([]byte, 34))
	buf.Write([]byte{0xFF, 0xF8, 0x69, 0x08})
	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func reopen(t *testing.T, path string) File {
	t.Helper()
	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// retag clears every field and writes the tagged set, the way the batch does.
func retag(t *testing.T, f File, art []byte) {
	t.Helper()
	for _, field := range Fields {
		f.Remove(field)
	}
	f.Set(Title, "New Title")
	f.Set(Artist, "A, B")
	f.Set(Comment, "Tagged for null:radio")
	if art != nil {
		f.SetArtwork(art)
	}
	require.NoError(t, f.Save())
}

func TestOpen_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := Open("/music/track.wav")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSupported(t *testing.T) {
	t.Parallel()

	assert.True(t, Supported(".opus"))
	assert.True(t, Supported(".OPUS"))
	assert.True(t, Supported(".flac"))
	assert.True(t, Supported(".mp3"))
	assert.False(t, Supported(".wav"))
	assert.Equal(t, []string{".flac", ".mp3", ".ogg", ".opus"}, Extensions())
}

func TestTrimExt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A - B", TrimExt("/music/A - B.opus"))
	assert.Equal(t, "A - B", TrimExt("A - B.MP3"))
	assert.Equal(t, "A - B (feat. C)", TrimExt("A - B (feat. C)"))
	assert.Equal(t, "A - B.wav", TrimExt("A - B.wav"))
}

func TestFields_CoversClearList(t *testing.T) {
	t.Parallel()

	assert.Len(t, Fields, 16)
	for _, f := range Fields {
		assert.NotEmpty(t, id3Frames[f], "id3 mapping for %s", f)
		if f != Artwork {
			assert.NotEmpty(t, vorbisKeys[f], "vorbis mapping for %s", f)
		}
	}
}

func TestMP3_RoundTrip(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "track.mp3", []byte("not really mpeg audio frames"))

	f, err := Open(path)
	require.NoError(t, err)
	f.Set(Album, "Old Album")
	f.Set(TrackNumber, "3")
	f.Set(Comment, "old comment")
	f.Set(Lyrics, "la la la")
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	f = reopen(t, path)
	assert.Equal(t, "Old Album", f.Get(Album))
	assert.Equal(t, "3", f.Get(TrackNumber))
	assert.Equal(t, "old comment", f.Get(Comment))
	assert.Equal(t, "la la la", f.Get(Lyrics))
	retag(t, f, fakePNG)
	require.NoError(t, f.Close())

	f = reopen(t, path)
	assert.Empty(t, f.Get(Album))
	assert.Empty(t, f.Get(TrackNumber))
	assert.Empty(t, f.Get(Lyrics))
	assert.Equal(t, "New Title", f.Get(Title))
	assert.Equal(t, "A, B", f.Get(Artist))
	assert.Equal(t, "Tagged for null:radio", f.Get(Comment))

	mf, ok := f.(*mp3File)
	require.True(t, ok)
	assert.Len(t, mf.tag.GetFrames("APIC"), 1)
	assert.Len(t, mf.tag.GetFrames("COMM"), 1)
}

func TestMP3_SetArtworkEmptyClears(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "track.mp3", []byte("not really mpeg audio frames"))

	f, err := Open(path)
	require.NoError(t, err)
	f.SetArtwork(fakePNG)
	f.SetArtwork(nil)
	mf := f.(*mp3File)
	assert.Empty(t, mf.tag.GetFrames("APIC"))
	require.NoError(t, f.Close())
}

func TestFLAC_RoundTrip(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "track.flac", minimalFLAC())

	f, err := Open(path)
	require.NoError(t, err)
	f.Set(Album, "Old Album")
	f.Set(TrackNumber, "7")
	f.Set(TotalTracks, "12")
	f.Set(Comment, "old comment")
	f.SetArtwork(fakePNG)
	require.NoError(t, f.Save())

	f = reopen(t, path)
	assert.Equal(t, "Old Album", f.Get(Album))
	assert.Equal(t, "7", f.Get(TrackNumber))
	assert.Equal(t, "12", f.Get(TotalTracks))
	retag(t, f, fakePNG)

	f = reopen(t, path)
	assert.Empty(t, f.Get(Album))
	assert.Empty(t, f.Get(TrackNumber))
	assert.Empty(t, f.Get(TotalTracks))
	assert.Equal(t, "New Title", f.Get(Title))
	assert.Equal(t, "A, B", f.Get(Artist))
	assert.Equal(t, "Tagged for null:radio", f.Get(Comment))

	ff, ok := f.(*flacFile)
	require.True(t, ok)
	pictures := 0
	comments := 0
	for _, b := range ff.file.Meta {
		switch b.Type {
		case flac.Picture:
			pictures++
		case flac.VorbisComment:
			comments++
		}
	}
	assert.Equal(t, 1, pictures)
	assert.Equal(t, 1, comments)
}

func TestFLAC_RemoveArtwork(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "track.flac", minimalFLAC())

	f, err := Open(path)
	require.NoError(t, err)
	f.SetArtwork(fakePNG)
	require.NoError(t, f.Save())

	f = reopen(t, path)
	f.Remove(Artwork)
	require.NoError(t, f.Save())

	f = reopen(t, path)
	for _, b := range f.(*flacFile).file.Meta {
		assert.NotEqual(t, flac.Picture, b.Type)
	}
}

func TestFLAC_Garbage(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "broken.flac", []byte("definitely not flac"))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestInspect_MP3(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "track.mp3", []byte("not really mpeg audio frames"))

	f, err := Open(path)
	require.NoError(t, err)
	retag(t, f, nil)
	require.NoError(t, f.Close())

	s, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path)
	assert.Equal(t, "New Title", s.Title)
	assert.Equal(t, "A, B", s.Artist)
	assert.False(t, s.HasPicture)
}

func TestInspect_Missing(t *testing.T) {
	t.Parallel()

	_, err := Inspect(filepath.Join(t.TempDir(), "nope.mp3"))
	assert.Error(t, err)
}

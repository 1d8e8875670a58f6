package tags

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// Summary is a read-only view of a file's current tags.
type Summary struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Comment    string `json:"comment"`
	HasPicture bool   `json:"has_picture"`
}

// Inspect peeks at a file's tags without going through a writable backend.
func Inspect(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}

	return Summary{
		Path:       path,
		Format:     string(m.Format()),
		Title:      m.Title(),
		Artist:     m.Artist(),
		Comment:    m.Comment(),
		HasPicture: m.Picture() != nil,
	}, nil
}

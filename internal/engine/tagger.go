package engine

import (
	"strings"

	"downtag/internal/tags"
)

// artistJoin separates artists in the stored tag.
const artistJoin = ", "

// Tagger handles metadata embedding
type Tagger struct {
	// Comment is the marker written to every tagged file and used to
	// recognise files already processed.
	Comment string
}

func NewTagger(comment string) *Tagger {
	return &Tagger{Comment: comment}
}

// IsTagged reports whether f already carries the marker comment.
func (t *Tagger) IsTagged(f tags.File) bool {
	return f.Get(tags.Comment) == t.Comment
}

// Write clears every known field, writes the job's title, artists, marker
// comment and artwork, then saves.
func (t *Tagger) Write(f tags.File, job Job) error {
	// 1. Clear so stale track numbers, albums etc. do not survive a re-tag
	for _, field := range tags.Fields {
		f.Remove(field)
	}

	// 2. Text tags
	f.Set(tags.Title, job.Candidate.Title)
	f.Set(tags.Artist, strings.Join(job.Candidate.Artists(), artistJoin))
	f.Set(tags.Comment, t.Comment)

	// 3. Cover art
	if len(job.Artwork) > 0 {
		f.SetArtwork(job.Artwork)
	}

	// 4. Save
	return f.Save()
}

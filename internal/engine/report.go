package engine

// Status is the outcome of one file.
type Status string

const (
	StatusTagged        Status = "tagged"
	StatusAlreadyTagged Status = "already-tagged"
	StatusUnparsed      Status = "unparsed"
	StatusFailed        Status = "failed"
	StatusDryRun        Status = "dry-run"
)

// Art notes explain why a tagged file has no artwork.
const (
	ArtNoteHTTP     = "track-info-http-error"
	ArtNoteRequest  = "track-info-request-failed"
	ArtNoteNoTrack  = "no-track-info"
	ArtNoteNoImage  = "no-art-at-index"
	ArtNoteEmptyURL = "empty-art-url"
	ArtNoteFetch    = "art-download-failed"
)

// Result describes what happened to one file.
type Result struct {
	File    string   `json:"file"`
	Status  Status   `json:"status"`
	Title   string   `json:"title,omitempty"`
	Artists []string `json:"artists,omitempty"`
	Artwork bool     `json:"artwork"`
	ArtNote string   `json:"art_note,omitempty"`
	Error   string   `json:"error,omitempty"`

	Err error `json:"-"`
}

func (r *Result) fail(err error) {
	r.Status = StatusFailed
	r.Err = err
	r.Error = err.Error()
}

// Report collects the results of one batch, in enumeration order.
type Report struct {
	Dir       string   `json:"dir"`
	Results   []Result `json:"results"`
	Cancelled bool     `json:"cancelled"`
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

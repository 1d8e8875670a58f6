// Package engine runs the tagging pipeline over a directory.
// It wires the file name parser, the track-info lookup, the art download and
// the tag writer together, one file at a time.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/vbauerster/mpb/v8"

	"downtag/internal/api"
	"downtag/internal/config"
	"downtag/internal/filename"
	"downtag/internal/logging"
	"downtag/internal/tags"
)

// ErrBusy is returned by Run while another batch is in progress.
var ErrBusy = errors.New("a batch is already running")

// Enricher looks up track info and downloads cover art.
// *api.Client satisfies it.
type Enricher interface {
	Enrich(ctx context.Context, artist, title string) (api.Enrichment, error)
	FetchArt(ctx context.Context, url string) ([]byte, error)
}

// Job is the per-file record passed from lookup to the tag writer.
type Job struct {
	Path       string
	Candidate  filename.Parsed
	Enrichment api.Enrichment
	Artwork    []byte
}

// Engine coordinates parsing, lookups and tagging for one directory.
type Engine struct {
	Client Enricher
	Tagger *Tagger
	Open   tags.Opener
	Fs     afero.Fs
	Clock  clockwork.Clock
	Log    zerolog.Logger

	Delay  time.Duration // Wait after each tagged file (default: 250ms)
	Ext    string        // Extension to pick up, with leading dot
	DryRun bool

	// Progress receives the progress bar; nil disables it.
	Progress io.Writer
	// Out receives the header and summary boxes; nil disables them.
	Out io.Writer
	// NewLogger builds the logger used while the progress bar is drawn.
	// Defaults to a console logger at Log's level.
	NewLogger func(w io.Writer) zerolog.Logger

	running atomic.Bool
}

// New creates an Engine with default settings over the OS filesystem.
func New(client Enricher, log zerolog.Logger) *Engine {
	return &Engine{
		Client: client,
		Tagger: NewTagger(config.DefaultComment),
		Open:   tags.Open,
		Fs:     afero.NewOsFs(),
		Clock:  clockwork.NewRealClock(),
		Log:    log,
		Delay:  config.DefaultDelay,
		Ext:    config.DefaultExtension,
	}
}

// SetDelay sets the wait after each tagged file.
func (e *Engine) SetDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	e.Delay = d
}

// Running reports whether a batch is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Enumerate lists the regular files in dir whose names end in ext, in
// lexical order. Subdirectories are not descended into.
func Enumerate(fs afero.Fs, dir, ext string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, fi := range entries {
		if !fi.Mode().IsRegular() || !strings.HasSuffix(fi.Name(), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, fi.Name()))
	}
	return files, nil
}

// Run tags every eligible file in dir. Per-file failures are recorded in the
// report and never stop the batch. A cancelled context stops between files
// and is returned alongside the partial report.
func (e *Engine) Run(ctx context.Context, dir string) (*Report, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer e.running.Store(false)

	files, err := Enumerate(e.Fs, dir, e.Ext)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	report := &Report{Dir: dir, Results: make([]Result, 0, len(files))}
	if e.Out != nil {
		printHeader(e.Out, dir, e.Ext, len(files), e.DryRun)
	}

	// Log lines go through the progress container so they print above the bar.
	log := e.Log
	var bar *progress
	if e.Progress != nil && len(files) > 0 {
		p := mpb.New(mpb.WithOutput(e.Progress), mpb.WithWidth(40), mpb.WithAutoRefresh())
		bar = newProgress(p, len(files))
		log = e.barLogger(p)
	}

	for _, path := range files {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		res := e.process(ctx, log, path)
		report.Results = append(report.Results, res)
		bar.advance()

		if res.Status == StatusTagged && !e.wait(ctx) {
			report.Cancelled = true
			break
		}
	}
	bar.finish()

	if e.Out != nil {
		printSummary(e.Out, report)
	}
	if report.Cancelled {
		return report, ctx.Err()
	}
	return report, nil
}

func (e *Engine) barLogger(w io.Writer) zerolog.Logger {
	if e.NewLogger != nil {
		return e.NewLogger(w)
	}
	return logging.New(w, e.Log.GetLevel())
}

// wait sleeps for Delay. It returns false if ctx ends first.
func (e *Engine) wait(ctx context.Context) bool {
	if e.Delay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-e.Clock.After(e.Delay):
		return true
	}
}

func (e *Engine) process(ctx context.Context, log zerolog.Logger, path string) Result {
	res := Result{File: filepath.Base(path)}

	f, err := e.Open(path)
	if err != nil {
		log.Error().Err(err).Str("file", res.File).Msg("could not read tags")
		res.fail(err)
		return res
	}
	defer f.Close()

	if e.Tagger.IsTagged(f) {
		log.Debug().Str("file", res.File).Msg("already tagged")
		res.Status = StatusAlreadyTagged
		return res
	}

	parsed, ok := filename.ParsePath(path).(filename.Parsed)
	if !ok {
		log.Warn().Str("file", res.File).Msg("could not parse file name")
		res.Status = StatusUnparsed
		return res
	}
	res.Title = parsed.Title
	res.Artists = parsed.Artists()

	if e.DryRun {
		log.Info().Str("file", res.File).Msgf("Would tag '%s' by %s", parsed.Title, filename.Oxfordize(res.Artists))
		res.Status = StatusDryRun
		return res
	}

	job := Job{Path: path, Candidate: parsed}
	job.Enrichment, res.ArtNote = e.enrich(ctx, log, res.File, parsed)

	if job.Enrichment.HasArt() {
		art, err := e.Client.FetchArt(ctx, job.Enrichment.AlbumArtURL)
		if err != nil {
			log.Warn().Err(err).Str("file", res.File).Str("url", job.Enrichment.AlbumArtURL).Msg("could not download track art")
			res.ArtNote = ArtNoteFetch
		} else {
			job.Artwork = art
		}
	}

	// Do not half-tag a file once the batch has been cancelled
	if err := ctx.Err(); err != nil {
		res.fail(err)
		return res
	}

	if err := e.Tagger.Write(f, job); err != nil {
		log.Error().Err(err).Str("file", res.File).Msg("could not tag file")
		res.fail(err)
		return res
	}

	res.Status = StatusTagged
	res.Artwork = len(job.Artwork) > 0
	log.Info().Msgf("Tagged '%s' by %s", parsed.Title, filename.Oxfordize(res.Artists))
	return res
}

// enrich looks up the primary artist and title. Any failure leaves the
// enrichment empty and returns a note explaining why.
func (e *Engine) enrich(ctx context.Context, log zerolog.Logger, file string, p filename.Parsed) (api.Enrichment, string) {
	info, err := e.Client.Enrich(ctx, p.Primary(), p.Title)

	var statusErr *api.StatusError
	switch {
	case err == nil:
		if !info.HasArt() {
			log.Debug().Str("file", file).Msg("empty track art url")
			return info, ArtNoteEmptyURL
		}
		return info, ""
	case errors.As(err, &statusErr):
		log.Warn().Err(err).Str("file", file).Int("status", statusErr.StatusCode).Msg("could not get track info")
		return api.Enrichment{}, ArtNoteHTTP
	case errors.Is(err, api.ErrNoArtwork):
		log.Warn().Str("file", file).Msg("no track art")
		return api.Enrichment{}, ArtNoteNoImage
	case errors.Is(err, api.ErrNoTrackInfo):
		log.Warn().Err(err).Str("file", file).Msg("no track information")
		return api.Enrichment{}, ArtNoteNoTrack
	default:
		log.Warn().Err(err).Str("file", file).Msg("could not get track info")
		return api.Enrichment{}, ArtNoteRequest
	}
}

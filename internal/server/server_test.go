package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downtag/internal/api"
	"downtag/internal/engine"
	"downtag/internal/tags"
	"downtag/internal/version"
)

type stubEnricher struct {
	info api.Enrichment
	err  error
}

func (s stubEnricher) Enrich(context.Context, string, string) (api.Enrichment, error) {
	return s.info, s.err
}

func (s stubEnricher) FetchArt(context.Context, string) ([]byte, error) {
	return nil, nil
}

type stubFile struct{ fields map[tags.Field]string }

func (s *stubFile) Path() string                   { return "" }
func (s *stubFile) Get(f tags.Field) string        { return s.fields[f] }
func (s *stubFile) Remove(f tags.Field)            { delete(s.fields, f) }
func (s *stubFile) Set(f tags.Field, value string) { s.fields[f] = value }
func (s *stubFile) SetArtwork([]byte)              {}
func (s *stubFile) Save() error                    { return nil }
func (s *stubFile) Close() error                   { return nil }

func newEngine(t *testing.T, enr engine.Enricher, names ...string) *engine.Engine {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, name := range names {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("/music", name), nil, 0o644))
	}

	eng := engine.New(enr, zerolog.Nop())
	eng.Fs = fs
	eng.Delay = 0
	eng.Open = func(string) (tags.File, error) {
		return &stubFile{fields: map[tags.Field]string{}}, nil
	}
	return eng
}

func do(t *testing.T, eng *engine.Engine, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	New(eng, "/music").ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRoot(t *testing.T) {
	t.Parallel()

	rec := do(t, newEngine(t, stubEnricher{}), http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "downtag "+version.Short()+" running", rec.Body.String())
}

func TestParse(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, stubEnricher{})

	rec := do(t, eng, http.MethodGet, "/parse?name="+url.QueryEscape("A & B - Song (feat. C).opus"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"parsed":true,"artist":["A","B"],"title":"Song","featured":"C"}`, rec.Body.String())

	rec = do(t, eng, http.MethodGet, "/parse?name="+url.QueryEscape("A - Song (feat. C)"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"parsed":true,"artist":["A"],"title":"Song","featured":"C"}`, rec.Body.String())

	rec = do(t, eng, http.MethodGet, "/parse?name=nothing")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"parsed":false,"name":"nothing"}`, rec.Body.String())

	rec = do(t, eng, http.MethodGet, "/parse")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		enr  stubEnricher
		code int
	}{
		{"ok", stubEnricher{info: api.Enrichment{AlbumArtURL: "https://img/x.png"}}, http.StatusOK},
		{"upstream status", stubEnricher{err: &api.StatusError{StatusCode: 503, Status: "503 Service Unavailable"}}, http.StatusBadGateway},
		{"no track", stubEnricher{err: api.ErrNoTrackInfo}, http.StatusNotFound},
		{"no art", stubEnricher{err: api.ErrNoArtwork}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, newEngine(t, tt.enr), http.MethodGet, "/lookup?artist=A&title=Song")
			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.JSONEq(t, `{"album_art_url":"https://img/x.png"}`, rec.Body.String())
			}
		})
	}

	rec := do(t, newEngine(t, stubEnricher{}), http.MethodGet, "/lookup?artist=A")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRun(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, stubEnricher{}, "A - One.opus", "junk.opus", "skip.mp3")

	rec := do(t, eng, http.MethodPost, "/run")
	require.Equal(t, http.StatusOK, rec.Code)

	var report engine.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "/music", report.Dir)
	require.Len(t, report.Results, 2)
	assert.Equal(t, engine.StatusTagged, report.Results[0].Status)
	assert.Equal(t, engine.StatusUnparsed, report.Results[1].Status)
}

func TestRun_MissingDir(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, stubEnricher{})
	eng.Fs = afero.NewMemMapFs()

	rec := do(t, eng, http.MethodPost, "/run")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

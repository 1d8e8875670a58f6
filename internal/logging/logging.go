// Package logging builds the console logger shared by the CLI and the engine.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// ColorEnabled follows the NO_COLOR convention and TERM=dumb.
func ColorEnabled() bool {
	return os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb"
}

// New returns a logger writing human-readable lines to w at level. Extra
// writers receive the same events as JSON.
func New(w io.Writer, level zerolog.Level, extra ...io.Writer) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !ColorEnabled(),
	}
	if len(extra) > 0 {
		out = zerolog.MultiLevelWriter(append([]io.Writer{out}, extra...)...)
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// File returns a size-rotated log file writer.
func File(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1,
		MaxBackups: 2,
	}
}

// Level maps the --debug flag.
func Level(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

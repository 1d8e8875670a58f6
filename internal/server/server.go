// Package server exposes the parser, the track-info lookup and batch runs
// over HTTP.
package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"downtag/internal/api"
	"downtag/internal/engine"
	"downtag/internal/filename"
	"downtag/internal/tags"
	"downtag/internal/version"
)

type parsedResponse struct {
	OK bool `json:"parsed"`
	filename.Parsed
}

type unparsedResponse struct {
	OK bool `json:"parsed"`
	filename.Unparsed
}

// New builds the echo instance. Batches started through POST /run tag dir.
func New(eng *engine.Engine, dir string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "downtag "+version.Short()+" running")
	})

	e.GET("/parse", func(c echo.Context) error {
		name := c.QueryParam("name")
		if name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "missing name")
		}

		switch r := filename.Parse(tags.TrimExt(name)).(type) {
		case filename.Parsed:
			return c.JSON(http.StatusOK, parsedResponse{OK: true, Parsed: r})
		case filename.Unparsed:
			return c.JSON(http.StatusOK, unparsedResponse{OK: false, Unparsed: r})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
	})

	e.GET("/lookup", func(c echo.Context) error {
		artist, title := c.QueryParam("artist"), c.QueryParam("title")
		if artist == "" || title == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "artist and title are required")
		}

		info, err := eng.Client.Enrich(c.Request().Context(), artist, title)
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(http.StatusOK, info)
	})

	e.POST("/run", func(c echo.Context) error {
		report, err := eng.Run(c.Request().Context(), dir)
		switch {
		case errors.Is(err, engine.ErrBusy):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case report == nil:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		// A cancelled batch still reports what it finished
		return c.JSON(http.StatusOK, report)
	})

	return e
}

func lookupError(err error) error {
	var statusErr *api.StatusError
	switch {
	case errors.As(err, &statusErr):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case errors.Is(err, api.ErrNoTrackInfo), errors.Is(err, api.ErrNoArtwork):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}

// Start serves on port until the listener fails.
func Start(eng *engine.Engine, dir, port string) error {
	e := New(eng, dir)
	if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

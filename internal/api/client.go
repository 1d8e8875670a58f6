// Package api talks to the Last.fm track-info service and downloads cover art.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/imroc/req/v3"
	"github.com/tidwall/gjson"
)

const (
	BaseURL   = "https://ws.audioscrobbler.com/2.0/"
	UserAgent = "downtag"

	// DefaultImageIndex selects the third image in the album image list,
	// which Last.fm orders small to mega.
	DefaultImageIndex = 2

	chunkSize = 1024
)

type Client struct {
	APIKey     string
	BaseURL    string
	ImageIndex int
	HTTP       *req.Client
}

func NewClient(apiKey string) *Client {
	c := &Client{
		APIKey:     apiKey,
		BaseURL:    BaseURL,
		ImageIndex: DefaultImageIndex,
		HTTP:       req.NewClient(),
	}

	c.HTTP.SetUserAgent(UserAgent)

	return c
}

func (c *Client) SetProxy(proxyURL string) error {
	if proxyURL == "" {
		return nil
	}
	// req/v3 handles http, https and socks5 schemes
	c.HTTP.SetProxyURL(proxyURL)
	return nil
}

func (c *Client) SetUserAgent(ua string) {
	if ua == "" {
		return
	}
	c.HTTP.SetUserAgent(ua)
}

func (c *Client) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	c.HTTP.SetTimeout(d)
}

// Enrich looks up artist and title and returns the album art URL at
// ImageIndex. A non-200 reply yields a *StatusError, a reply without a track
// object yields ErrNoTrackInfo and a track without enough images yields
// ErrNoArtwork.
func (c *Client) Enrich(ctx context.Context, artist, title string) (Enrichment, error) {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"method":  "track.getInfo",
			"api_key": c.APIKey,
			"artist":  artist,
			"track":   title,
			"format":  "json",
		}).
		Get(c.BaseURL)
	if err != nil {
		return Enrichment{}, fmt.Errorf("track info request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Enrichment{}, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return ExtractArtwork(resp.Bytes(), c.ImageIndex)
}

// ExtractArtwork pulls track.album.image[index]["#text"] out of a
// track.getInfo reply.
func ExtractArtwork(body []byte, index int) (Enrichment, error) {
	if !gjson.ValidBytes(body) {
		return Enrichment{}, fmt.Errorf("%w: invalid json response", ErrNoTrackInfo)
	}

	track := gjson.GetBytes(body, "track")
	if !track.IsObject() {
		return Enrichment{}, ErrNoTrackInfo
	}

	images := track.Get("album.image")
	if index < 0 || !images.IsArray() {
		return Enrichment{}, ErrNoArtwork
	}

	list := images.Array()
	if len(list) <= index {
		return Enrichment{}, ErrNoArtwork
	}

	return Enrichment{AlbumArtURL: list[index].Get(`\#text`).String()}, nil
}

// FetchArt downloads url, reading the body in fixed-size chunks.
func (c *Client) FetchArt(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		DisableAutoReadResponse().
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("art request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		n, err := resp.Body.Read(chunk)
		buf.Write(chunk[:n])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read art: %w", err)
		}
	}

	return buf.Bytes(), nil
}

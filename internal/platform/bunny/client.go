// Package bunny is a thin client for the Bunny Stream video library API.
package bunny

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lshigami/vaikuntha/config"
)

var (
	ErrNotConfigured = errors.New("bunny stream is not configured")
	ErrNotFound      = errors.New("video not found")
)

// Video mirrors the fields of the Bunny video object the platform uses.
type Video struct {
	GUID         string `json:"guid"`
	Title        string `json:"title"`
	LibraryID    int64  `json:"videoLibraryId"`
	Status       int    `json:"status"`
	Length       int    `json:"length"`
	ThumbnailURL string `json:"-"`
	EmbedURL     string `json:"-"`
	Thumbnail    string `json:"thumbnailFileName"`
	CollectionID string `json:"collectionId"`
}

type Client struct {
	libraryID string
	apiKey    string
	baseURL   string
	http      *http.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		libraryID: cfg.Bunny.LibraryID,
		apiKey:    cfg.Bunny.APIKey,
		baseURL:   strings.TrimRight(cfg.Bunny.BaseURL, "/"),
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.libraryID != "" && c.apiKey != "" && c.baseURL != ""
}

func (c *Client) CreateVideo(ctx context.Context, title, collectionID string) (*Video, error) {
	payload := map[string]string{"title": title}
	if collectionID != "" {
		payload["collectionId"] = collectionID
	}
	var v Video
	if err := c.do(ctx, http.MethodPost, "/library/"+url.PathEscape(c.libraryID)+"/videos", payload, &v); err != nil {
		return nil, err
	}
	c.decorate(&v)
	return &v, nil
}

func (c *Client) GetVideo(ctx context.Context, guid string) (*Video, error) {
	var v Video
	path := "/library/" + url.PathEscape(c.libraryID) + "/videos/" + url.PathEscape(guid)
	if err := c.do(ctx, http.MethodGet, path, nil, &v); err != nil {
		return nil, err
	}
	c.decorate(&v)
	return &v, nil
}

func (c *Client) decorate(v *Video) {
	v.EmbedURL = fmt.Sprintf("https://iframe.mediadelivery.net/embed/%s/%s", c.libraryID, v.GUID)
	if v.Thumbnail != "" {
		v.ThumbnailURL = fmt.Sprintf("%s/library/%s/videos/%s/%s", c.baseURL, c.libraryID, v.GUID, v.Thumbnail)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("AccessKey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bunny request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("bunny %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

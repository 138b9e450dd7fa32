package bunny

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lshigami/vaikuntha/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(&config.Config{Bunny: config.Bunny{LibraryID: "42", APIKey: "key", BaseURL: srv.URL}})
}

func TestCreateVideo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/library/42/videos", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("AccessKey"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Intro", body["title"])
		_, _ = w.Write([]byte(`{"guid":"abc","title":"Intro","videoLibraryId":42,"status":0}`))
	})

	v, err := c.CreateVideo(context.Background(), "Intro", "")
	require.NoError(t, err)
	assert.Equal(t, "abc", v.GUID)
	assert.Equal(t, "https://iframe.mediadelivery.net/embed/42/abc", v.EmbedURL)
}

func TestGetVideoNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.GetVideo(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotConfigured(t *testing.T) {
	c := New(&config.Config{})
	assert.False(t, c.Configured())
	_, err := c.GetVideo(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

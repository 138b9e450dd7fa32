package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadImageIsDownscaled(t *testing.T) {
	h := newHarness(t)
	actor, _ := h.actor(model.RoleInstructor)
	raw := pngBytes(t, 200, 100)

	resp, err := h.media.Upload(h.ctx, actor, MediaImage, dto.FileUpload{
		Filename: "Cover.PNG", ContentType: "image/png", Size: int64(len(raw)), Body: bytes.NewReader(raw),
	})
	require.NoError(t, err)
	assert.Equal(t, 64, resp.Width)
	assert.Equal(t, 32, resp.Height)
	assert.Equal(t, "image/png", resp.ContentType)
	assert.True(t, strings.HasPrefix(resp.Key, "media/image/"+actor.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".png"))
	assert.Equal(t, "/uploads/"+resp.Key, resp.URL)

	stored := h.store.objects[resp.Key]
	cfg, err := png.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, int64(len(stored)), resp.Size)
}

func TestUploadRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	actor, _ := h.actor(model.RoleStudent)

	_, err := h.media.Upload(h.ctx, actor, MediaImage, dto.FileUpload{Filename: "x.png", Size: 3, Body: strings.NewReader("abc")})
	requireAPIError(t, err, http.StatusBadRequest, "invalid_image")

	_, err = h.media.Upload(h.ctx, actor, "archive", dto.FileUpload{Filename: "x.zip", Size: 3, Body: strings.NewReader("abc")})
	requireAPIError(t, err, http.StatusBadRequest, "validation_failed")

	huge := h.cfg.Media.MaxUploadBytes + 1
	_, err = h.media.Upload(h.ctx, actor, MediaDocument, dto.FileUpload{Filename: "x.pdf", Size: huge, Body: strings.NewReader("abc")})
	requireAPIError(t, err, http.StatusRequestEntityTooLarge, "file_too_large")

	// a lying size header is caught while reading
	body := bytes.Repeat([]byte("a"), int(huge))
	_, err = h.media.Upload(h.ctx, actor, MediaDocument, dto.FileUpload{Filename: "x.pdf", Size: 10, Body: bytes.NewReader(body)})
	requireAPIError(t, err, http.StatusRequestEntityTooLarge, "file_too_large")

	doc, err := h.media.Upload(h.ctx, actor, MediaDocument, dto.FileUpload{Filename: "notes.pdf", Size: 3, Body: strings.NewReader("pdf")})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
}

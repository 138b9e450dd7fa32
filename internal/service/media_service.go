package service

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/config"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/platform/storage"
	"github.com/rs/zerolog/log"
)

const (
	MediaImage    = "image"
	MediaVideo    = "video"
	MediaDocument = "document"
)

// MediaService validates uploads and stores them in the media store.
type MediaService interface {
	Upload(ctx context.Context, actor Actor, mediaType string, file dto.FileUpload) (*dto.MediaUploadResponseDTO, error)
}

type mediaService struct {
	store        storage.Store
	maxBytes     int64
	maxDimension int
}

func NewMediaService(store storage.Store, cfg *config.Config) MediaService {
	return &mediaService{
		store:        store,
		maxBytes:     cfg.Media.MaxUploadBytes,
		maxDimension: cfg.Media.ImageMaxDimension,
	}
}

func (s *mediaService) Upload(ctx context.Context, actor Actor, mediaType string, file dto.FileUpload) (*dto.MediaUploadResponseDTO, error) {
	switch mediaType {
	case MediaImage, MediaVideo, MediaDocument:
	default:
		return nil, apierr.Validation("type must be one of image video document")
	}
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return nil, apierr.TooLarge("file_too_large", "file exceeds the %d byte limit", s.maxBytes)
	}

	body := file.Body
	if s.maxBytes > 0 {
		body = io.LimitReader(file.Body, s.maxBytes+1)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, apierr.BadRequest("invalid_file", "could not read upload")
	}
	if s.maxBytes > 0 && int64(len(raw)) > s.maxBytes {
		return nil, apierr.TooLarge("file_too_large", "file exceeds the %d byte limit", s.maxBytes)
	}
	if len(raw) == 0 {
		return nil, apierr.BadRequest("empty_file", "uploaded file is empty")
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	contentType := file.ContentType
	resp := &dto.MediaUploadResponseDTO{}

	if mediaType == MediaImage {
		out, width, height, outExt, err := s.processImage(raw, ext)
		if err != nil {
			return nil, err
		}
		raw, ext = out, outExt
		resp.Width, resp.Height = width, height
		contentType = ""
	}

	key := path.Join("media", mediaType, actor.ID.String(), uuid.NewString()+ext)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.ContentTypeForKey(key)
	}
	if err := s.store.Put(ctx, key, bytes.NewReader(raw), contentType); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to store media")
		return nil, err
	}
	log.Info().Str("key", key).Int("size", len(raw)).Str("userID", actor.ID.String()).Msg("Media uploaded")

	resp.URL = s.store.PublicURL(key)
	resp.Key = key
	resp.ContentType = contentType
	resp.Size = int64(len(raw))
	return resp, nil
}

// processImage honours EXIF orientation and fits the image inside the
// configured bounding box. Images are re-encoded as JPEG unless they were PNG.
func (s *mediaService) processImage(raw []byte, ext string) ([]byte, int, int, string, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, 0, "", apierr.BadRequest("invalid_image", "file is not a supported image")
	}
	if max := s.maxDimension; max > 0 {
		b := img.Bounds()
		if b.Dx() > max || b.Dy() > max {
			img = imaging.Fit(img, max, max, imaging.Lanczos)
		}
	}

	format, outExt := imaging.JPEG, ".jpg"
	if ext == ".png" {
		format, outExt = imaging.PNG, ".png"
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, 0, 0, "", err
	}
	b := img.Bounds()
	return buf.Bytes(), b.Dx(), b.Dy(), outExt, nil
}

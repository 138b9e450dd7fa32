package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/platform/bunny"
	"github.com/rs/zerolog/log"
)

// VideoProvider is the slice of the Bunny Stream client the service uses.
type VideoProvider interface {
	Configured() bool
	CreateVideo(ctx context.Context, title, collectionID string) (*bunny.Video, error)
	GetVideo(ctx context.Context, guid string) (*bunny.Video, error)
}

// VideoService exposes the video host to course staff.
type VideoService interface {
	CreateVideo(ctx context.Context, actor Actor, req dto.VideoCreateDTO) (*dto.VideoResponseDTO, error)
	GetVideo(ctx context.Context, actor Actor, guid string) (*dto.VideoResponseDTO, error)
}

type videoService struct {
	provider VideoProvider
}

func NewVideoService(provider VideoProvider) VideoService {
	return &videoService{provider: provider}
}

func toVideoDTO(v *bunny.Video) *dto.VideoResponseDTO {
	return &dto.VideoResponseDTO{
		GUID:         v.GUID,
		Title:        v.Title,
		LibraryID:    strconv.FormatInt(v.LibraryID, 10),
		Status:       v.Status,
		Length:       v.Length,
		ThumbnailURL: v.ThumbnailURL,
		EmbedURL:     v.EmbedURL,
	}
}

func (s *videoService) check(actor Actor) error {
	if !actor.IsStaffRole() {
		return apierr.Forbidden("forbidden", "only instructors and admins manage videos")
	}
	if !s.provider.Configured() {
		return apierr.Unavailable("video_unavailable", "video hosting is not configured")
	}
	return nil
}

func videoError(err error) error {
	switch {
	case errors.Is(err, bunny.ErrNotConfigured):
		return apierr.Unavailable("video_unavailable", "video hosting is not configured")
	case errors.Is(err, bunny.ErrNotFound):
		return apierr.NotFound("video_not_found", "video not found")
	default:
		return apierr.New(http.StatusBadGateway, "video_provider_error", errors.New("video provider error"))
	}
}

func (s *videoService) CreateVideo(ctx context.Context, actor Actor, req dto.VideoCreateDTO) (*dto.VideoResponseDTO, error) {
	if err := s.check(actor); err != nil {
		return nil, err
	}
	v, err := s.provider.CreateVideo(ctx, req.Title, req.CollectionID)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Failed to create video")
		return nil, videoError(err)
	}
	log.Info().Str("guid", v.GUID).Str("userID", actor.ID.String()).Msg("Video created")
	return toVideoDTO(v), nil
}

func (s *videoService) GetVideo(ctx context.Context, actor Actor, guid string) (*dto.VideoResponseDTO, error) {
	if err := s.check(actor); err != nil {
		return nil, err
	}
	v, err := s.provider.GetVideo(ctx, guid)
	if err != nil {
		if !errors.Is(err, bunny.ErrNotFound) {
			log.Error().Err(err).Str("guid", guid).Msg("Failed to fetch video")
		}
		return nil, videoError(err)
	}
	return toVideoDTO(v), nil
}

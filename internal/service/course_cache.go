package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/config"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/platform/cache"
	"github.com/rs/zerolog/log"
)

// CourseCache holds rendered course detail responses under both the id and
// the slug key. Cache errors degrade to a database read.
type CourseCache struct {
	store cache.Cache
	ttl   time.Duration
}

func NewCourseCache(store cache.Cache, cfg *config.Config) *CourseCache {
	ttl := cfg.Redis.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CourseCache{store: store, ttl: ttl}
}

func courseIDKey(id uuid.UUID) string { return "course:id:" + id.String() }

func courseSlugKey(slug string) string { return "course:slug:" + slug }

func (c *CourseCache) get(ctx context.Context, key string) (*dto.CourseResponseDTO, bool) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Course cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var resp dto.CourseResponseDTO
	if err := json.Unmarshal(raw, &resp); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Dropping undecodable course cache entry")
		_ = c.store.Delete(ctx, key)
		return nil, false
	}
	return &resp, true
}

func (c *CourseCache) ByID(ctx context.Context, id uuid.UUID) (*dto.CourseResponseDTO, bool) {
	return c.get(ctx, courseIDKey(id))
}

func (c *CourseCache) BySlug(ctx context.Context, slug string) (*dto.CourseResponseDTO, bool) {
	return c.get(ctx, courseSlugKey(slug))
}

func (c *CourseCache) Put(ctx context.Context, course *dto.CourseResponseDTO) {
	raw, err := json.Marshal(course)
	if err != nil {
		return
	}
	for _, key := range []string{courseIDKey(course.ID), courseSlugKey(course.Slug)} {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Course cache write failed")
		}
	}
}

// Invalidate drops the entries for the course; pass every slug the course
// has been known by.
func (c *CourseCache) Invalidate(ctx context.Context, id uuid.UUID, slugs ...string) {
	keys := []string{courseIDKey(id)}
	for _, slug := range slugs {
		if slug != "" {
			keys = append(keys, courseSlugKey(slug))
		}
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Str("courseID", id.String()).Msg("Course cache invalidation failed")
	}
}

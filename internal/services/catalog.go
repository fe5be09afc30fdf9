package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/data/repos/learning"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

const catalogCacheTTL = 5 * time.Minute

// CatalogService is the public, unauthenticated course surface. The
// homepage lists (featured, trending, stats) are cached in redis since
// they are read on every visit and only move when admins publish.
type CatalogService interface {
	Catalog(ctx context.Context, filter learning.CatalogFilter) ([]*types.Course, int64, error)
	Categories(ctx context.Context) ([]learning.CategoryCount, error)
	Featured(ctx context.Context, limit int) ([]*types.Course, error)
	Trending(ctx context.Context, limit int) ([]*types.Course, error)
	Similar(ctx context.Context, courseID uuid.UUID, limit int) ([]*types.Course, error)
	Stats(ctx context.Context) (*learning.CatalogStats, error)
}

type catalogService struct {
	log        *logger.Logger
	rdb        *goredis.Client
	courseRepo repos.CourseRepo
}

func NewCatalogService(baseLog *logger.Logger, rdb *goredis.Client, courseRepo repos.CourseRepo) CatalogService {
	return &catalogService{
		log:        baseLog.With("service", "CatalogService"),
		rdb:        rdb,
		courseRepo: courseRepo,
	}
}

func (cs *catalogService) Catalog(ctx context.Context, filter learning.CatalogFilter) ([]*types.Course, int64, error) {
	courses, total, err := cs.courseRepo.Catalog(ctx, nil, filter)
	if err != nil {
		cs.log.Warn("Catalog: query failed", "error", err)
		return nil, 0, fmt.Errorf("list catalog: %w", err)
	}
	return courses, total, nil
}

func (cs *catalogService) Categories(ctx context.Context) ([]learning.CategoryCount, error) {
	categories, err := cs.courseRepo.Categories(ctx, nil)
	if err != nil {
		cs.log.Warn("Categories: query failed", "error", err)
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (cs *catalogService) Featured(ctx context.Context, limit int) ([]*types.Course, error) {
	if limit < 1 || limit > 20 {
		limit = 8
	}

	key := fmt.Sprintf("catalog:featured:%d", limit)
	var cached []*types.Course
	if cs.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	courses, err := cs.courseRepo.Featured(ctx, nil, limit)
	if err != nil {
		cs.log.Warn("Featured: query failed", "error", err)
		return nil, fmt.Errorf("list featured courses: %w", err)
	}
	cs.cacheSet(ctx, key, courses)
	return courses, nil
}

func (cs *catalogService) Trending(ctx context.Context, limit int) ([]*types.Course, error) {
	if limit < 1 || limit > 20 {
		limit = 10
	}

	key := fmt.Sprintf("catalog:trending:%d", limit)
	var cached []*types.Course
	if cs.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	courses, err := cs.courseRepo.Trending(ctx, nil, limit)
	if err != nil {
		cs.log.Warn("Trending: query failed", "error", err)
		return nil, fmt.Errorf("list trending courses: %w", err)
	}
	cs.cacheSet(ctx, key, courses)
	return courses, nil
}

func (cs *catalogService) Similar(ctx context.Context, courseID uuid.UUID, limit int) ([]*types.Course, error) {
	if limit < 1 || limit > 20 {
		limit = 6
	}

	courses, err := cs.courseRepo.Similar(ctx, nil, courseID, limit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("COURSE_NOT_FOUND")
		}
		cs.log.Warn("Similar: query failed", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("list similar courses: %w", err)
	}
	return courses, nil
}

func (cs *catalogService) Stats(ctx context.Context) (*learning.CatalogStats, error) {
	const key = "catalog:stats"
	var cached learning.CatalogStats
	if cs.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	stats, err := cs.courseRepo.Stats(ctx, nil)
	if err != nil {
		cs.log.Warn("Stats: query failed", "error", err)
		return nil, fmt.Errorf("catalog stats: %w", err)
	}
	cs.cacheSet(ctx, key, stats)
	return stats, nil
}

// cacheGet returns true only on a clean hit. Redis being down or a
// stale payload shape both fall through to the database.
func (cs *catalogService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if cs.rdb == nil {
		return false
	}
	raw, err := cs.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		cs.log.Warn("Dropping undecodable cache entry", "key", key, "error", err)
		cs.rdb.Del(ctx, key)
		return false
	}
	return true
}

func (cs *catalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if cs.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := cs.rdb.Set(ctx, key, raw, catalogCacheTTL).Err(); err != nil {
		cs.log.Warn("Cache write failed", "key", key, "error", err)
	}
}

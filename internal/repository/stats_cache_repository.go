package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
)

// StatsCacheRepository keeps a read-through copy of course statistics in
// Redis. Every course has a version counter next to its entry: Invalidate
// bumps it, and Set only writes while the version a reader observed before
// computing is still current. The database stays the source of truth.
type StatsCacheRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatsCacheRepository(rdb *redis.Client, ttl time.Duration) *StatsCacheRepository {
	return &StatsCacheRepository{rdb: rdb, ttl: ttl}
}

func courseStatsKey(courseID uint) string {
	return fmt.Sprintf("%s%d", util.CourseStatsKeyPrefix, courseID)
}

func courseStatsVersionKey(courseID uint) string {
	return fmt.Sprintf("%s%d:version", util.CourseStatsKeyPrefix, courseID)
}

// Version is 0 for a course that was never invalidated.
func (r *StatsCacheRepository) Version(ctx context.Context, courseID uint) (int64, error) {
	v, err := r.rdb.Get(ctx, courseStatsVersionKey(courseID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Get reports ok=false on a cache miss.
func (r *StatsCacheRepository) Get(ctx context.Context, courseID uint) (*model.CourseStats, bool, error) {
	raw, err := r.rdb.Get(ctx, courseStatsKey(courseID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var stats model.CourseStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

// Set stores stats under WATCH of the version key and reports whether the
// entry was written. A concurrent Invalidate aborts the write.
func (r *StatsCacheRepository) Set(ctx context.Context, stats *model.CourseStats, version int64) (bool, error) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return false, err
	}
	key := courseStatsKey(stats.CourseID)
	versionKey := courseStatsVersionKey(stats.CourseID)

	stored := false
	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, r.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Invalidate bumps the version and drops the entry atomically.
func (r *StatsCacheRepository) Invalidate(ctx context.Context, courseID uint) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, courseStatsVersionKey(courseID))
		pipe.Del(ctx, courseStatsKey(courseID))
		return nil
	})
	return err
}

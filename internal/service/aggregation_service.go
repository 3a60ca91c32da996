package service

import (
	"context"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatsCache is an optional read-through cache of course statistics.
// Set must only store when the course version still equals the one the
// reader took before computing; Invalidate advances that version.
type StatsCache interface {
	Version(ctx context.Context, courseID uint) (int64, error)
	Get(ctx context.Context, courseID uint) (*model.CourseStats, bool, error)
	Set(ctx context.Context, stats *model.CourseStats, version int64) (bool, error)
	Invalidate(ctx context.Context, courseID uint) error
}

// AggregationService derives enrollment ratings and course totals from the
// stored rows. Nothing is accumulated incrementally.
type AggregationService struct {
	DB          *gorm.DB
	Catalog     *repository.CatalogRepository
	Enrollments *repository.EnrollmentRepository
	Submissions *repository.SubmissionRepository
	Cache       StatsCache
}

func NewAggregationService(
	db *gorm.DB,
	catalog *repository.CatalogRepository,
	enrollments *repository.EnrollmentRepository,
	submissions *repository.SubmissionRepository,
	cache StatsCache,
) *AggregationService {
	return &AggregationService{
		DB:          db,
		Catalog:     catalog,
		Enrollments: enrollments,
		Submissions: submissions,
		Cache:       cache,
	}
}

func (s *AggregationService) conn(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return s.DB
	}
	return tx
}

// RecomputeEnrollmentRating rescans the enrollment's submissions and stores
// the resulting rating. Callers grading or resetting run it inside the same
// transaction that changed the submissions.
func (s *AggregationService) RecomputeEnrollmentRating(ctx context.Context, tx *gorm.DB, enrollmentID uint) (float64, error) {
	db := s.conn(tx)
	scores, err := s.Submissions.WithTx(db).Scores(ctx, enrollmentID)
	if err != nil {
		return 0, err
	}
	rating := RatingFromScores(scores)
	if err := s.Enrollments.WithTx(db).UpdateRating(ctx, enrollmentID, rating); err != nil {
		return 0, err
	}
	return rating, nil
}

// ReconcileCourseEnrollment overwrites the cached total_enrollment column
// with the live row count. The caller must hold the course row lock.
func (s *AggregationService) ReconcileCourseEnrollment(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	db := s.conn(tx)
	total, err := s.Enrollments.WithTx(db).CountByCourse(ctx, courseID)
	if err != nil {
		return 0, err
	}
	if err := s.Catalog.WithTx(db).SetTotalEnrollment(ctx, courseID, total); err != nil {
		return 0, err
	}
	return total, nil
}

// GetCourseStats serves the average and graded count through the cache when
// one is configured. total_enrollment is always the live row count.
func (s *AggregationService) GetCourseStats(ctx context.Context, courseID uint) (*model.CourseStats, error) {
	var (
		version   int64
		cacheable bool
	)
	if s.Cache != nil {
		v, err := s.Cache.Version(ctx, courseID)
		if err != nil {
			logger.Log.Warn("course stats cache version read failed", zap.Uint("course_id", courseID), zap.Error(err))
		} else {
			version, cacheable = v, true
			cached, ok, err := s.Cache.Get(ctx, courseID)
			if err != nil {
				logger.Log.Warn("course stats cache read failed", zap.Uint("course_id", courseID), zap.Error(err))
			} else if ok {
				total, err := s.Enrollments.CountByCourse(ctx, courseID)
				if err != nil {
					return nil, err
				}
				cached.TotalEnrollment = total
				return cached, nil
			}
		}
	}

	var stats *model.CourseStats
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Catalog.WithTx(tx).FindCourseByID(ctx, courseID); err != nil {
			return notFound(err, "course", courseID)
		}
		total, graded, avg, err := s.Enrollments.WithTx(tx).RatingSummary(ctx, courseID)
		if err != nil {
			return err
		}
		stats = &model.CourseStats{
			CourseID:          courseID,
			TotalEnrollment:   total,
			AverageRating:     clamp(avg, 0, 100),
			GradedEnrollments: graded,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cacheable {
		entry := *stats
		stored, err := s.Cache.Set(ctx, &entry, version)
		if err != nil {
			logger.Log.Warn("course stats cache write failed", zap.Uint("course_id", courseID), zap.Error(err))
		} else if !stored {
			logger.Log.Debug("course stats changed while computing, not cached", zap.Uint("course_id", courseID))
		}
	}
	return stats, nil
}

func (s *AggregationService) GetEnrollmentRating(ctx context.Context, enrollmentID uint) (*model.EnrollmentRating, error) {
	var out *model.EnrollmentRating
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := s.Enrollments.WithTx(tx).FindByID(ctx, enrollmentID)
		if err != nil {
			return notFound(err, "enrollment", enrollmentID)
		}
		count, err := s.Submissions.WithTx(tx).CountByEnrollment(ctx, enrollmentID)
		if err != nil {
			return err
		}
		out = &model.EnrollmentRating{
			EnrollmentID:    e.ID,
			Rating:          e.Rating,
			SubmissionCount: count,
			Status:          enrollmentStatus(e.Rating, count),
		}
		return nil
	})
	return out, err
}

// InvalidateCourse drops cached statistics after a committed change.
func (s *AggregationService) InvalidateCourse(ctx context.Context, courseID uint) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, courseID); err != nil {
		logger.Log.Warn("course stats cache invalidation failed", zap.Uint("course_id", courseID), zap.Error(err))
	}
}

// graded is an observable condition, not a stored state.
func enrollmentStatus(rating float64, submissions int64) string {
	if rating > 0 || submissions > 0 {
		return model.EnrollmentGraded
	}
	return model.EnrollmentActive
}

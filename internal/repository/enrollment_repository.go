package repository

import (
	"context"
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id uint) (*model.Enrollment, error) {
	var e model.Enrollment
	if err := r.DB.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// LockByID reads the enrollment with a row lock held until the transaction ends.
func (r *EnrollmentRepository) LockByID(ctx context.Context, id uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) FindByLearnerAndCourse(ctx context.Context, learnerID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.WithContext(ctx).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID uint) ([]model.Enrollment, error) {
	var es []model.Enrollment
	err := r.DB.WithContext(ctx).Where("course_id = ?", courseID).Order("id asc").Find(&es).Error
	return es, err
}

func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&n).Error
	return n, err
}

func (r *EnrollmentRepository) UpdateRating(ctx context.Context, id uint, rating float64) error {
	return r.DB.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("id = ?", id).
		Update("rating", rating).Error
}

type courseRatingRow struct {
	Total  int64
	Graded int64
	Avg    *float64
}

// RatingSummary returns the live enrollment count, how many enrollments have
// at least one submission, and the mean rating across all enrollments.
func (r *EnrollmentRepository) RatingSummary(ctx context.Context, courseID uint) (total, graded int64, avg float64, err error) {
	var row courseRatingRow
	err = r.DB.WithContext(ctx).
		Table("enrollments e").
		Select("COUNT(*) AS total, " +
			"COUNT(CASE WHEN EXISTS (SELECT 1 FROM submissions s WHERE s.enrollment_id = e.id) THEN 1 END) AS graded, " +
			"AVG(e.rating) AS avg").
		Where("e.course_id = ?", courseID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, 0, err
	}
	if row.Avg != nil {
		avg = *row.Avg
	}
	return row.Total, row.Graded, avg, nil
}

func (r *EnrollmentRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.Enrollment{}, id).Error
}

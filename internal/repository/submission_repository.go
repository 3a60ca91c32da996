package repository

import (
	"context"
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: tx}
}

// Create inserts the submission and its selected choices.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	var s model.Submission
	if err := r.DB.WithContext(ctx).Preload("Choices").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) FindByEnrollmentAndLesson(ctx context.Context, enrollmentID, lessonID uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.WithContext(ctx).
		Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) ListByEnrollment(ctx context.Context, enrollmentID uint) ([]model.Submission, error) {
	var ss []model.Submission
	err := r.DB.WithContext(ctx).
		Preload("Choices").
		Where("enrollment_id = ?", enrollmentID).
		Order("submitted_at asc").
		Find(&ss).Error
	return ss, err
}

// Scores returns every recorded lesson score of the enrollment.
func (r *SubmissionRepository) Scores(ctx context.Context, enrollmentID uint) ([]float64, error) {
	var scores []float64
	err := r.DB.WithContext(ctx).
		Model(&model.Submission{}).
		Where("enrollment_id = ?", enrollmentID).
		Order("submitted_at asc").
		Pluck("score", &scores).Error
	return scores, err
}

func (r *SubmissionRepository) CountByEnrollment(ctx context.Context, enrollmentID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Submission{}).Where("enrollment_id = ?", enrollmentID).Count(&n).Error
	return n, err
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", id).Delete(&model.SubmissionChoice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Submission{}, "id = ?", id).Error
	})
}

// DeleteByEnrollment removes every submission of the enrollment and the
// selected-choice rows that hang off them.
func (r *SubmissionRepository) DeleteByEnrollment(ctx context.Context, enrollmentID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&model.Submission{}).Where("enrollment_id = ?", enrollmentID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("submission_id IN ?", ids).Delete(&model.SubmissionChoice{}).Error; err != nil {
			return err
		}
		return tx.Where("enrollment_id = ?", enrollmentID).Delete(&model.Submission{}).Error
	})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"
	"onlinecourse_backend/pkg/monitoring"
	"onlinecourse_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GradingService scores answer sets and records them as submissions. Each
// lesson may be submitted once per enrollment; ResetSubmission is the only
// way to allow another attempt.
type GradingService struct {
	DB          *gorm.DB
	Catalog     *repository.CatalogRepository
	Enrollments *repository.EnrollmentRepository
	Submissions *repository.SubmissionRepository
	Aggregation *AggregationService
}

func NewGradingService(
	db *gorm.DB,
	catalog *repository.CatalogRepository,
	enrollments *repository.EnrollmentRepository,
	submissions *repository.SubmissionRepository,
	aggregation *AggregationService,
) *GradingService {
	return &GradingService{
		DB:          db,
		Catalog:     catalog,
		Enrollments: enrollments,
		Submissions: submissions,
		Aggregation: aggregation,
	}
}

type GradeReq struct {
	LessonID  uint   `json:"lessonId" binding:"required"`
	ChoiceIDs []uint `json:"choiceIds"`
}

type GradeResult struct {
	Submission *model.Submission `json:"submission"`
	Score      float64           `json:"score"`
	Anomaly    bool              `json:"anomaly"`
	Rating     float64           `json:"rating"`
	Detail     *LessonScore      `json:"detail"`
}

// Grade scores selectedChoiceIDs against the lesson's correct choices,
// persists the submission and folds the score into the enrollment rating.
// The enrollment row stays locked from the first read to the rating write.
func (s *GradingService) Grade(ctx context.Context, enrollmentID, lessonID uint, selectedChoiceIDs []uint) (*GradeResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "GradingService.Grade")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("enrollment_id", int64(enrollmentID)),
		attribute.Int64("lesson_id", int64(lessonID)),
		attribute.Int("selected", len(selectedChoiceIDs)),
	)

	var (
		result   *GradeResult
		courseID uint
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.Enrollments.WithTx(tx).LockByID(ctx, enrollmentID)
		if err != nil {
			return notFound(err, "enrollment", enrollmentID)
		}
		courseID = enrollment.CourseID

		catalog := s.Catalog.WithTx(tx)
		lesson, err := catalog.FindLessonByID(ctx, lessonID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lesson %d: %w", lessonID, util.ErrLessonNotFound)
		}
		if err != nil {
			return err
		}
		if lesson.CourseID != enrollment.CourseID {
			return fmt.Errorf("lesson %d is not part of course %d: %w", lessonID, enrollment.CourseID, util.ErrLessonNotFound)
		}

		submissions := s.Submissions.WithTx(tx)
		if _, err := submissions.FindByEnrollmentAndLesson(ctx, enrollmentID, lessonID); err == nil {
			return util.ErrDuplicateSubmission
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		questions, err := catalog.ListQuestions(ctx, lessonID)
		if err != nil {
			return err
		}
		scored, err := ScoreLesson(questions, selectedChoiceIDs)
		if err != nil {
			return err
		}

		submission := &model.Submission{
			EnrollmentID: enrollmentID,
			LessonID:     lessonID,
			Score:        scored.Score,
			Anomaly:      scored.Anomaly,
			SubmittedAt:  time.Now(),
			Choices:      make([]model.SubmissionChoice, 0, len(scored.Selected)),
		}
		for _, id := range scored.Selected {
			submission.Choices = append(submission.Choices, model.SubmissionChoice{ChoiceID: id})
		}
		if err := submissions.Create(ctx, submission); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrDuplicateSubmission
			}
			return err
		}

		rating, err := s.Aggregation.RecomputeEnrollmentRating(ctx, tx, enrollmentID)
		if err != nil {
			return err
		}

		result = &GradeResult{
			Submission: submission,
			Score:      scored.Score,
			Anomaly:    scored.Anomaly,
			Rating:     rating,
			Detail:     scored,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		monitoring.ObserveGrade(gradeOutcome(err), 0, false)
		if errors.Is(err, util.ErrDuplicateSubmission) {
			return nil, fmt.Errorf("enrollment %d, lesson %d: %w", enrollmentID, lessonID, err)
		}
		return nil, err
	}

	s.Aggregation.InvalidateCourse(ctx, courseID)
	monitoring.ObserveGrade("accepted", result.Score, result.Anomaly)

	if result.Anomaly {
		logger.Log.Warn("graded lesson has no questions",
			zap.Uint("enrollment_id", enrollmentID),
			zap.Uint("lesson_id", lessonID))
	}
	logger.Log.Info("submission graded",
		zap.String("submission_id", result.Submission.ID),
		zap.Uint("enrollment_id", enrollmentID),
		zap.Uint("lesson_id", lessonID),
		zap.Float64("score", result.Score),
		zap.Float64("rating", result.Rating))
	return result, nil
}

func gradeOutcome(err error) string {
	switch {
	case errors.Is(err, util.ErrDuplicateSubmission):
		return "duplicate"
	case errors.Is(err, util.ErrInvalidChoiceReference):
		return "invalid_choice"
	case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrNotFound):
		return "not_found"
	}
	return "error"
}

func (s *GradingService) GetSubmission(ctx context.Context, submissionID string) (*model.Submission, error) {
	sub, err := s.Submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, notFound(err, "submission", submissionID)
	}
	return sub, nil
}

func (s *GradingService) ListSubmissions(ctx context.Context, enrollmentID uint) ([]model.Submission, error) {
	if _, err := s.Enrollments.FindByID(ctx, enrollmentID); err != nil {
		return nil, notFound(err, "enrollment", enrollmentID)
	}
	return s.Submissions.ListByEnrollment(ctx, enrollmentID)
}

// ResetSubmission removes a graded attempt so the learner can take the
// lesson again, and recomputes the enrollment rating in the same transaction.
func (s *GradingService) ResetSubmission(ctx context.Context, submissionID string) (float64, error) {
	ctx, span := tracing.Tracer.Start(ctx, "GradingService.ResetSubmission")
	defer span.End()

	var (
		rating   float64
		courseID uint
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissions := s.Submissions.WithTx(tx)
		sub, err := submissions.FindByID(ctx, submissionID)
		if err != nil {
			return notFound(err, "submission", submissionID)
		}
		enrollment, err := s.Enrollments.WithTx(tx).LockByID(ctx, sub.EnrollmentID)
		if err != nil {
			return notFound(err, "enrollment", sub.EnrollmentID)
		}
		courseID = enrollment.CourseID

		if err := submissions.Delete(ctx, submissionID); err != nil {
			return err
		}
		rating, err = s.Aggregation.RecomputeEnrollmentRating(ctx, tx, enrollment.ID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	s.Aggregation.InvalidateCourse(ctx, courseID)
	logger.Log.Info("submission reset",
		zap.String("submission_id", submissionID),
		zap.Float64("rating", rating))
	return rating, nil
}

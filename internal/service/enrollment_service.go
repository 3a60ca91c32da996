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

type EnrollmentService struct {
	DB          *gorm.DB
	Catalog     *repository.CatalogRepository
	People      *repository.PeopleRepository
	Enrollments *repository.EnrollmentRepository
	Submissions *repository.SubmissionRepository
	Aggregation *AggregationService
}

func NewEnrollmentService(
	db *gorm.DB,
	catalog *repository.CatalogRepository,
	people *repository.PeopleRepository,
	enrollments *repository.EnrollmentRepository,
	submissions *repository.SubmissionRepository,
	aggregation *AggregationService,
) *EnrollmentService {
	return &EnrollmentService{
		DB:          db,
		Catalog:     catalog,
		People:      people,
		Enrollments: enrollments,
		Submissions: submissions,
		Aggregation: aggregation,
	}
}

type EnrollReq struct {
	LearnerID uint                 `json:"learnerId"`
	CourseID  uint                 `json:"courseId" binding:"required"`
	Mode      model.EnrollmentMode `json:"mode"`
}

type EnrollmentDetail struct {
	model.Enrollment
	SubmissionCount int64  `json:"submissionCount"`
	Status          string `json:"status"`
}

// Enroll creates the (learner, course) enrollment with a zero rating and
// reconciles the course's total_enrollment under the course row lock.
func (s *EnrollmentService) Enroll(ctx context.Context, learnerID, courseID uint, mode model.EnrollmentMode) (*model.Enrollment, error) {
	ctx, span := tracing.Tracer.Start(ctx, "EnrollmentService.Enroll")
	defer span.End()
	span.SetAttributes(attribute.Int64("learner_id", int64(learnerID)), attribute.Int64("course_id", int64(courseID)))

	if mode == "" {
		mode = model.ModeAudit
	}
	if !mode.Valid() {
		return nil, validation("unknown enrollment mode %q", mode)
	}

	enrollment := &model.Enrollment{
		LearnerID:    learnerID,
		CourseID:     courseID,
		Mode:         mode,
		DateEnrolled: time.Now(),
	}

	var total int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.People.WithTx(tx).FindLearnerByID(ctx, learnerID); err != nil {
			return notFound(err, "learner", learnerID)
		}
		if _, err := s.Catalog.WithTx(tx).LockCourse(ctx, courseID); err != nil {
			return notFound(err, "course", courseID)
		}

		enrollments := s.Enrollments.WithTx(tx)
		if _, err := enrollments.FindByLearnerAndCourse(ctx, learnerID, courseID); err == nil {
			return util.ErrDuplicateEnrollment
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := enrollments.Create(ctx, enrollment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrDuplicateEnrollment
			}
			return err
		}

		var err error
		total, err = s.Aggregation.ReconcileCourseEnrollment(ctx, tx, courseID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, util.ErrDuplicateEnrollment) {
			return nil, fmt.Errorf("learner %d, course %d: %w", learnerID, courseID, err)
		}
		return nil, err
	}

	s.Aggregation.InvalidateCourse(ctx, courseID)
	monitoring.EnrollmentChanges.WithLabelValues("enroll").Inc()
	logger.Log.Info("learner enrolled",
		zap.Uint("enrollment_id", enrollment.ID),
		zap.Uint("learner_id", learnerID),
		zap.Uint("course_id", courseID),
		zap.String("mode", string(mode)),
		zap.Int64("total_enrollment", total))
	return enrollment, nil
}

// Unenroll deletes the enrollment and all of its submissions, then
// reconciles the course's total_enrollment.
func (s *EnrollmentService) Unenroll(ctx context.Context, enrollmentID uint) error {
	ctx, span := tracing.Tracer.Start(ctx, "EnrollmentService.Unenroll")
	defer span.End()
	span.SetAttributes(attribute.Int64("enrollment_id", int64(enrollmentID)))

	var courseID uint
	var total int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollments := s.Enrollments.WithTx(tx)
		e, err := enrollments.LockByID(ctx, enrollmentID)
		if err != nil {
			return notFound(err, "enrollment", enrollmentID)
		}
		courseID = e.CourseID

		if _, err := s.Catalog.WithTx(tx).LockCourse(ctx, courseID); err != nil {
			return notFound(err, "course", courseID)
		}
		if err := s.Submissions.WithTx(tx).DeleteByEnrollment(ctx, enrollmentID); err != nil {
			return err
		}
		if err := enrollments.Delete(ctx, enrollmentID); err != nil {
			return err
		}

		total, err = s.Aggregation.ReconcileCourseEnrollment(ctx, tx, courseID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.Aggregation.InvalidateCourse(ctx, courseID)
	monitoring.EnrollmentChanges.WithLabelValues("unenroll").Inc()
	logger.Log.Info("learner unenrolled",
		zap.Uint("enrollment_id", enrollmentID),
		zap.Uint("course_id", courseID),
		zap.Int64("total_enrollment", total))
	return nil
}

func (s *EnrollmentService) GetEnrollment(ctx context.Context, enrollmentID uint) (*EnrollmentDetail, error) {
	e, err := s.Enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, notFound(err, "enrollment", enrollmentID)
	}
	count, err := s.Submissions.CountByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	return &EnrollmentDetail{
		Enrollment:      *e,
		SubmissionCount: count,
		Status:          enrollmentStatus(e.Rating, count),
	}, nil
}

func (s *EnrollmentService) ListEnrollments(ctx context.Context, courseID uint) ([]model.Enrollment, error) {
	if _, err := s.Catalog.FindCourseByID(ctx, courseID); err != nil {
		return nil, notFound(err, "course", courseID)
	}
	return s.Enrollments.ListByCourse(ctx, courseID)
}

// Teaches reports whether the instructor is assigned to the course.
func (s *EnrollmentService) Teaches(ctx context.Context, courseID, instructorID uint) (bool, error) {
	if instructorID == 0 {
		return false, nil
	}
	return s.Catalog.HasInstructor(ctx, courseID, instructorID)
}

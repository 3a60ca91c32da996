package testutil

import (
	"context"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/pkg/database"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a fresh in-memory sqlite database with the full schema. The pool
// is pinned to one connection so the database lives as long as the test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := database.Open(sqlite.Open("file::memory:"), gormLogger.Silent)
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *model.Course {
	tb.Helper()
	now := time.Now()
	c := &model.Course{Name: name, Description: "desc", PublishDate: &now}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uint, order int) *model.Lesson {
	tb.Helper()
	l := &model.Lesson{CourseID: courseID, Title: "lesson", Order: order, Content: "content", IsPublished: true}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// SeedQuestion creates a question with one choice per entry of correct.
func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, lessonID uint, grade int, correct ...bool) *model.Question {
	tb.Helper()
	q := &model.Question{LessonID: lessonID, QuestionText: "question", Grade: grade}
	for _, ok := range correct {
		q.Choices = append(q.Choices, model.Choice{ChoiceText: "choice", IsCorrect: ok})
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedLearner(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uint) *model.Learner {
	tb.Helper()
	l := &model.Learner{UserID: userID, Occupation: model.OccupationDeveloper}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed learner: %v", err)
	}
	return l
}

func SeedInstructor(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uint) *model.Instructor {
	tb.Helper()
	i := &model.Instructor{UserID: userID, FullTime: true}
	if err := tx.WithContext(ctx).Create(i).Error; err != nil {
		tb.Fatalf("seed instructor: %v", err)
	}
	return i
}

func AssignInstructor(tb testing.TB, ctx context.Context, tx *gorm.DB, course *model.Course, instructor *model.Instructor) {
	tb.Helper()
	if err := tx.WithContext(ctx).Model(course).Association("Instructors").Append(instructor); err != nil {
		tb.Fatalf("assign instructor: %v", err)
	}
}

// SeedEnrollment inserts the row directly, leaving total_enrollment untouched.
func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, learnerID, courseID uint) *model.Enrollment {
	tb.Helper()
	e := &model.Enrollment{LearnerID: learnerID, CourseID: courseID, Mode: model.ModeAudit, DateEnrolled: time.Now()}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

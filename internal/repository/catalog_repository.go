package repository

import (
	"context"
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) WithTx(tx *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: tx}
}

var lessonOrder = clause.OrderByColumn{Column: clause.Column{Name: "order"}}

func (r *CatalogRepository) CreateCourse(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

func (r *CatalogRepository) UpdateCourse(ctx context.Context, course *model.Course) error {
	// total_enrollment is owned by the enrollment ledger
	return r.DB.WithContext(ctx).
		Model(course).
		Select("name", "description", "publish_date", "image").
		Updates(course).Error
}

func (r *CatalogRepository) FindCourseByID(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).Preload("Instructors").First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// LockCourse takes a row lock on the course for the rest of the transaction.
func (r *CatalogRepository) LockCourse(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CatalogRepository) ListCourses(ctx context.Context, page, limit int) ([]model.Course, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&model.Course{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Order("id asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *CatalogRepository) SetTotalEnrollment(ctx context.Context, courseID uint, total int64) error {
	return r.DB.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ?", courseID).
		UpdateColumn("total_enrollment", total).Error
}

func (r *CatalogRepository) AddInstructor(ctx context.Context, course *model.Course, instructor *model.Instructor) error {
	return r.DB.WithContext(ctx).Model(course).Association("Instructors").Append(instructor)
}

// HasInstructor reports whether the instructor is assigned to the course.
func (r *CatalogRepository) HasInstructor(ctx context.Context, courseID, instructorID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Table("course_instructors").
		Where("course_id = ? AND instructor_id = ?", courseID, instructorID).
		Count(&n).Error
	return n > 0, err
}

func (r *CatalogRepository) CreateLesson(ctx context.Context, lesson *model.Lesson) error {
	return r.DB.WithContext(ctx).Omit("Questions").Create(lesson).Error
}

func (r *CatalogRepository) UpdateLesson(ctx context.Context, lesson *model.Lesson) error {
	return r.DB.WithContext(ctx).Omit("Questions").Save(lesson).Error
}

func (r *CatalogRepository) FindLessonByID(ctx context.Context, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.DB.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CatalogRepository) ListLessons(ctx context.Context, courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order(lessonOrder).
		Find(&lessons).Error
	return lessons, err
}

// CreateQuestion inserts the question together with its choices.
func (r *CatalogRepository) CreateQuestion(ctx context.Context, question *model.Question) error {
	return r.DB.WithContext(ctx).Create(question).Error
}

func (r *CatalogRepository) UpdateQuestion(ctx context.Context, question *model.Question) error {
	return r.DB.WithContext(ctx).Omit("Choices").Save(question).Error
}

func (r *CatalogRepository) FindQuestionByID(ctx context.Context, id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.WithContext(ctx).Preload("Choices").First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestions returns the lesson's questions with their choices loaded.
func (r *CatalogRepository) ListQuestions(ctx context.Context, lessonID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.WithContext(ctx).
		Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("lesson_id = ?", lessonID).
		Order("id asc").
		Find(&qs).Error
	return qs, err
}

func (r *CatalogRepository) CreateChoice(ctx context.Context, choice *model.Choice) error {
	return r.DB.WithContext(ctx).Create(choice).Error
}

func (r *CatalogRepository) UpdateChoice(ctx context.Context, choice *model.Choice) error {
	return r.DB.WithContext(ctx).Save(choice).Error
}

func (r *CatalogRepository) FindChoiceByID(ctx context.Context, id uint) (*model.Choice, error) {
	var c model.Choice
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepository) ListChoices(ctx context.Context, questionID uint) ([]model.Choice, error) {
	var cs []model.Choice
	err := r.DB.WithContext(ctx).Where("question_id = ?", questionID).Order("id asc").Find(&cs).Error
	return cs, err
}

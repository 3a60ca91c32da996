package service

import (
	"context"
	"errors"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"strings"
	"time"

	"gorm.io/gorm"
)

// CatalogService authors courses, lessons, questions and choices. Writes take
// the owning course's row lock so a grade in flight never sees a half edited
// question.
type CatalogService struct {
	DB     *gorm.DB
	Repo   *repository.CatalogRepository
	People *repository.PeopleRepository
}

func NewCatalogService(db *gorm.DB, repo *repository.CatalogRepository, people *repository.PeopleRepository) *CatalogService {
	return &CatalogService{DB: db, Repo: repo, People: people}
}

type CourseReq struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	PublishDate *time.Time `json:"publishDate"`
	Image       *string    `json:"image"`
}

type LessonReq struct {
	Title       *string `json:"title"`
	Order       *int    `json:"order"`
	Content     *string `json:"content"`
	IsPublished *bool   `json:"isPublished"`
}

type ChoiceReq struct {
	ChoiceText string `json:"choiceText" binding:"required"`
	IsCorrect  bool   `json:"isCorrect"`
}

type QuestionReq struct {
	QuestionText string      `json:"questionText" binding:"required"`
	Grade        int         `json:"grade"`
	Choices      []ChoiceReq `json:"choices"`
}

type QuestionUpdateReq struct {
	QuestionText *string `json:"questionText"`
	Grade        *int    `json:"grade"`
}

type ChoiceUpdateReq struct {
	ChoiceText *string `json:"choiceText"`
	IsCorrect  *bool   `json:"isCorrect"`
}

func applyCourse(course *model.Course, req CourseReq) error {
	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.PublishDate != nil {
		course.PublishDate = req.PublishDate
	}
	if req.Image != nil {
		course.Image = *req.Image
	}
	if course.Name == "" {
		return validation("course name is required")
	}
	if len(course.Name) > 100 {
		return validation("course name exceeds 100 characters")
	}
	return nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, req CourseReq) (*model.Course, error) {
	course := &model.Course{}
	if err := applyCourse(course, req); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, courseID uint, req CourseReq) (*model.Course, error) {
	var course *model.Course
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		var err error
		course, err = repo.LockCourse(ctx, courseID)
		if err != nil {
			return notFound(err, "course", courseID)
		}
		if err := applyCourse(course, req); err != nil {
			return err
		}
		return repo.UpdateCourse(ctx, course)
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) GetCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	course, err := s.Repo.FindCourseByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, "course", courseID)
	}
	return course, nil
}

func (s *CatalogService) ListCourses(ctx context.Context, page, limit int) ([]model.Course, int64, error) {
	return s.Repo.ListCourses(ctx, page, limit)
}

func (s *CatalogService) AssignInstructor(ctx context.Context, courseID, instructorID uint) (*model.Course, error) {
	var course *model.Course
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		c, err := repo.LockCourse(ctx, courseID)
		if err != nil {
			return notFound(err, "course", courseID)
		}
		instructor, err := s.People.WithTx(tx).FindInstructorByID(ctx, instructorID)
		if err != nil {
			return notFound(err, "instructor", instructorID)
		}
		if err := repo.AddInstructor(ctx, c, instructor); err != nil {
			return err
		}
		course, err = repo.FindCourseByID(ctx, courseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) CreateLesson(ctx context.Context, courseID uint, req LessonReq) (*model.Lesson, error) {
	lesson := &model.Lesson{CourseID: courseID}
	applyLesson(lesson, req)
	if err := validateLesson(lesson); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		if _, err := repo.LockCourse(ctx, courseID); err != nil {
			return notFound(err, "course", courseID)
		}
		if err := repo.CreateLesson(ctx, lesson); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validation("lesson order %d already used in course %d", lesson.Order, courseID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

func applyLesson(lesson *model.Lesson, req LessonReq) {
	if req.Title != nil {
		lesson.Title = strings.TrimSpace(*req.Title)
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.IsPublished != nil {
		lesson.IsPublished = *req.IsPublished
	}
}

func validateLesson(lesson *model.Lesson) error {
	if lesson.Title == "" {
		return validation("lesson title is required")
	}
	if lesson.Order < 1 {
		return validation("lesson order must be at least 1")
	}
	return nil
}

// requirePublishable fails when any question lacks a correct choice.
func requirePublishable(questions []model.Question) error {
	for i := range questions {
		if !questions[i].HasCorrectChoice() {
			return validation("question %d has no correct choice", questions[i].ID)
		}
	}
	return nil
}

func (s *CatalogService) UpdateLesson(ctx context.Context, lessonID uint, req LessonReq) (*model.Lesson, error) {
	var lesson *model.Lesson
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		var err error
		lesson, err = s.lockLesson(ctx, repo, lessonID)
		if err != nil {
			return err
		}
		wasPublished := lesson.IsPublished
		applyLesson(lesson, req)
		if err := validateLesson(lesson); err != nil {
			return err
		}
		if lesson.IsPublished && !wasPublished {
			questions, err := repo.ListQuestions(ctx, lessonID)
			if err != nil {
				return err
			}
			if err := requirePublishable(questions); err != nil {
				return err
			}
		}
		if err := repo.UpdateLesson(ctx, lesson); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validation("lesson order %d already used in course %d", lesson.Order, lesson.CourseID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

// PublishLesson marks the lesson as published once every question has at
// least one correct choice.
func (s *CatalogService) PublishLesson(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	published := true
	return s.UpdateLesson(ctx, lessonID, LessonReq{IsPublished: &published})
}

// lockLesson loads the lesson and locks its course row.
func (s *CatalogService) lockLesson(ctx context.Context, repo *repository.CatalogRepository, lessonID uint) (*model.Lesson, error) {
	lesson, err := repo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return nil, notFound(err, "lesson", lessonID)
	}
	if _, err := repo.LockCourse(ctx, lesson.CourseID); err != nil {
		return nil, notFound(err, "course", lesson.CourseID)
	}
	return lesson, nil
}

func (s *CatalogService) GetLesson(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.Repo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return nil, notFound(err, "lesson", lessonID)
	}
	return lesson, nil
}

func (s *CatalogService) ListLessons(ctx context.Context, courseID uint) ([]model.Lesson, error) {
	if _, err := s.Repo.FindCourseByID(ctx, courseID); err != nil {
		return nil, notFound(err, "course", courseID)
	}
	return s.Repo.ListLessons(ctx, courseID)
}

func (s *CatalogService) CreateQuestion(ctx context.Context, lessonID uint, req QuestionReq) (*model.Question, error) {
	question := &model.Question{
		LessonID:     lessonID,
		QuestionText: strings.TrimSpace(req.QuestionText),
		Grade:        req.Grade,
	}
	if question.QuestionText == "" {
		return nil, validation("question text is required")
	}
	if question.Grade <= 0 {
		return nil, validation("question grade must be a positive integer")
	}
	for _, c := range req.Choices {
		text := strings.TrimSpace(c.ChoiceText)
		if text == "" {
			return nil, validation("choice text is required")
		}
		question.Choices = append(question.Choices, model.Choice{ChoiceText: text, IsCorrect: c.IsCorrect})
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		lesson, err := s.lockLesson(ctx, repo, lessonID)
		if err != nil {
			return err
		}
		if lesson.IsPublished && !question.HasCorrectChoice() {
			return validation("question attached to published lesson %d needs a correct choice", lessonID)
		}
		return repo.CreateQuestion(ctx, question)
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *CatalogService) UpdateQuestion(ctx context.Context, questionID uint, req QuestionUpdateReq) (*model.Question, error) {
	var question *model.Question
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		var err error
		question, err = repo.FindQuestionByID(ctx, questionID)
		if err != nil {
			return notFound(err, "question", questionID)
		}
		if _, err := s.lockLesson(ctx, repo, question.LessonID); err != nil {
			return err
		}
		if req.QuestionText != nil {
			question.QuestionText = strings.TrimSpace(*req.QuestionText)
		}
		if req.Grade != nil {
			question.Grade = *req.Grade
		}
		if question.QuestionText == "" {
			return validation("question text is required")
		}
		if question.Grade <= 0 {
			return validation("question grade must be a positive integer")
		}
		return repo.UpdateQuestion(ctx, question)
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *CatalogService) ListQuestions(ctx context.Context, lessonID uint) ([]model.Question, error) {
	if _, err := s.Repo.FindLessonByID(ctx, lessonID); err != nil {
		return nil, notFound(err, "lesson", lessonID)
	}
	return s.Repo.ListQuestions(ctx, lessonID)
}

func (s *CatalogService) CreateChoice(ctx context.Context, questionID uint, req ChoiceReq) (*model.Choice, error) {
	choice := &model.Choice{
		QuestionID: questionID,
		ChoiceText: strings.TrimSpace(req.ChoiceText),
		IsCorrect:  req.IsCorrect,
	}
	if choice.ChoiceText == "" {
		return nil, validation("choice text is required")
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		question, err := repo.FindQuestionByID(ctx, questionID)
		if err != nil {
			return notFound(err, "question", questionID)
		}
		if _, err := s.lockLesson(ctx, repo, question.LessonID); err != nil {
			return err
		}
		return repo.CreateChoice(ctx, choice)
	})
	if err != nil {
		return nil, err
	}
	return choice, nil
}

// UpdateChoice refuses to leave a question of a published lesson without a
// correct choice.
func (s *CatalogService) UpdateChoice(ctx context.Context, choiceID uint, req ChoiceUpdateReq) (*model.Choice, error) {
	var choice *model.Choice
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		var err error
		choice, err = repo.FindChoiceByID(ctx, choiceID)
		if err != nil {
			return notFound(err, "choice", choiceID)
		}
		question, err := repo.FindQuestionByID(ctx, choice.QuestionID)
		if err != nil {
			return notFound(err, "question", choice.QuestionID)
		}
		lesson, err := s.lockLesson(ctx, repo, question.LessonID)
		if err != nil {
			return err
		}

		if req.ChoiceText != nil {
			choice.ChoiceText = strings.TrimSpace(*req.ChoiceText)
		}
		if req.IsCorrect != nil {
			choice.IsCorrect = *req.IsCorrect
		}
		if choice.ChoiceText == "" {
			return validation("choice text is required")
		}

		if lesson.IsPublished {
			for i := range question.Choices {
				if question.Choices[i].ID == choice.ID {
					question.Choices[i].IsCorrect = choice.IsCorrect
				}
			}
			if !question.HasCorrectChoice() {
				return validation("question %d of published lesson %d would have no correct choice", question.ID, lesson.ID)
			}
		}
		return repo.UpdateChoice(ctx, choice)
	})
	if err != nil {
		return nil, err
	}
	return choice, nil
}

func (s *CatalogService) ListChoices(ctx context.Context, questionID uint) ([]model.Choice, error) {
	if _, err := s.Repo.FindQuestionByID(ctx, questionID); err != nil {
		return nil, notFound(err, "question", questionID)
	}
	return s.Repo.ListChoices(ctx, questionID)
}

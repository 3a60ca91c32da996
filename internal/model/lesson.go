package model

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID    uint       `gorm:"not null;uniqueIndex:idx_lesson_course_order" json:"courseId"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Order       int        `gorm:"not null;uniqueIndex:idx_lesson_course_order" json:"order"`
	Content     string     `gorm:"type:text" json:"content"`
	IsPublished bool       `gorm:"default:false" json:"isPublished"`
	Questions   []Question `gorm:"foreignKey:LessonID" json:"questions,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// swagger:model Question
type Question struct {
	BaseModel
	LessonID     uint     `gorm:"index;not null" json:"lessonId"`
	QuestionText string   `gorm:"type:text;not null" json:"questionText"`
	Grade        int      `gorm:"not null;default:1" json:"grade"` // 分值
	Choices      []Choice `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// HasCorrectChoice reports whether at least one loaded choice is marked correct.
func (q *Question) HasCorrectChoice() bool {
	for _, c := range q.Choices {
		if c.IsCorrect {
			return true
		}
	}
	return false
}

// swagger:model Choice
type Choice struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	ChoiceText string `gorm:"size:200;not null" json:"choiceText"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (Choice) TableName() string {
	return "choices"
}

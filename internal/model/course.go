package model

import "time"

// swagger:model Course
type Course struct {
	BaseModel
	Name        string     `gorm:"size:100;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	PublishDate *time.Time `json:"publishDate,omitempty"`
	// Image is a reference resolved by the media layer, never a blob.
	Image           string        `gorm:"size:255" json:"image"`
	TotalEnrollment int64         `gorm:"default:0" json:"totalEnrollment"`
	Instructors     []*Instructor `gorm:"many2many:course_instructors;" json:"instructors,omitempty"`
	Lessons         []Lesson      `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

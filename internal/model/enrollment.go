package model

import "time"

type EnrollmentMode string

const (
	ModeAudit EnrollmentMode = "audit"
	ModeHonor EnrollmentMode = "honor"
	ModeBeta  EnrollmentMode = "BETA"
)

func (m EnrollmentMode) Valid() bool {
	switch m {
	case ModeAudit, ModeHonor, ModeBeta:
		return true
	}
	return false
}

// Enrollment rows are removed physically on unenroll so the (learner, course)
// unique index can be reused by a later enrollment.
// swagger:model Enrollment
type Enrollment struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	LearnerID    uint           `gorm:"not null;uniqueIndex:idx_enrollment_learner_course" json:"learnerId"`
	CourseID     uint           `gorm:"not null;uniqueIndex:idx_enrollment_learner_course;index" json:"courseId"`
	DateEnrolled time.Time      `json:"dateEnrolled"`
	Mode         EnrollmentMode `gorm:"size:5;default:'audit'" json:"mode"`
	Rating       float64        `gorm:"default:0" json:"rating"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

const (
	EnrollmentActive = "active"
	EnrollmentGraded = "graded"
)

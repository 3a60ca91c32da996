package model

import "time"

// Submission is one graded attempt of a lesson. The unique index on
// (enrollment_id, lesson_id) enforces the one-attempt policy in storage.
// swagger:model Submission
type Submission struct {
	UUIDBase
	EnrollmentID uint               `gorm:"not null;uniqueIndex:idx_submission_enrollment_lesson" json:"enrollmentId"`
	LessonID     uint               `gorm:"not null;uniqueIndex:idx_submission_enrollment_lesson" json:"lessonId"`
	Score        float64            `gorm:"not null;default:0" json:"score"`
	Anomaly      bool               `gorm:"default:false" json:"anomaly"`
	SubmittedAt  time.Time          `json:"submittedAt"`
	Choices      []SubmissionChoice `gorm:"foreignKey:SubmissionID" json:"choices,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

type SubmissionChoice struct {
	SubmissionID string `gorm:"primaryKey;type:varchar(36)" json:"submissionId"`
	ChoiceID     uint   `gorm:"primaryKey" json:"choiceId"`
}

func (SubmissionChoice) TableName() string {
	return "submission_choices"
}

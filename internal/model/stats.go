package model

// CourseStats is computed at read time from enrollment rows.
type CourseStats struct {
	CourseID          uint    `json:"courseId"`
	TotalEnrollment   int64   `json:"totalEnrollment"`
	AverageRating     float64 `json:"averageRating"`
	GradedEnrollments int64   `json:"gradedEnrollments"`
}

type EnrollmentRating struct {
	EnrollmentID    uint    `json:"enrollmentId"`
	Rating          float64 `json:"rating"`
	SubmissionCount int64   `json:"submissionCount"`
	Status          string  `json:"status"`
}

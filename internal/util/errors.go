package util

import "errors"

var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not found")
	ErrDuplicateEnrollment    = errors.New("learner already enrolled in course")
	ErrLessonNotFound         = errors.New("lesson not found")
	ErrInvalidChoiceReference = errors.New("choice does not belong to lesson")
	ErrDuplicateSubmission    = errors.New("lesson already submitted")
	ErrPermissionDenied       = errors.New("permission denied")
)

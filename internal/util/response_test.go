package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("question 3: %w", ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("enrollment 9: %w", ErrNotFound), http.StatusNotFound},
		{ErrLessonNotFound, http.StatusNotFound},
		{ErrDuplicateEnrollment, http.StatusConflict},
		{fmt.Errorf("lesson 2: %w", ErrDuplicateSubmission), http.StatusConflict},
		{ErrInvalidChoiceReference, http.StatusUnprocessableEntity},
		{ErrPermissionDenied, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

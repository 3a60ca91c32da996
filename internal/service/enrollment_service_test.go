package service

import (
	"context"
	"errors"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/testutil"
	"onlinecourse_backend/internal/util"
	"sync"
	"testing"
)

func TestEnrollUpdatesTotalEnrollment(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, nil)
	course := testutil.SeedCourse(t, ctx, s.db, "Go")
	l1 := testutil.SeedLearner(t, ctx, s.db, 1)
	l2 := testutil.SeedLearner(t, ctx, s.db, 2)

	e, err := s.enrollment.Enroll(ctx, l1.ID, course.ID, "")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if e.Rating != 0 || e.Mode != model.ModeAudit {
		t.Fatalf("new enrollment rating=%v mode=%q, want 0 and audit", e.Rating, e.Mode)
	}
	if _, err := s.enrollment.Enroll(ctx, l2.ID, course.ID, model.ModeHonor); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if got := s.course(t, course.ID).TotalEnrollment; got != 2 {
		t.Fatalf("total_enrollment = %d, want 2", got)
	}
}

func TestEnrollDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, nil)
	course := testutil.SeedCourse(t, ctx, s.db, "Go")
	learner := testutil.SeedLearner(t, ctx, s.db, 1)

	first, err := s.enrollment.Enroll(ctx, learner.ID, course.ID, model.ModeHonor)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	_, err = s.enrollment.Enroll(ctx, learner.ID, course.ID, model.ModeBeta)
	if !errors.Is(err, util.ErrDuplicateEnrollment) {
		t.Fatalf("err = %v, want ErrDuplicateEnrollment", err)
	}

	row := s.enrollmentRow(t, first.ID)
	if row.Mode != model.ModeHonor || row.Rating != 0 {
		t.Fatalf("first enrollment changed: mode=%q rating=%v", row.Mode, row.Rating)
	}
	if got := s.course(t, course.ID).TotalEnrollment; got != 1 {
		t.Fatalf("total_enrollment = %d, want 1", got)
	}
}

func TestEnrollRejects(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, nil)
	course := testutil.SeedCourse(t, ctx, s.db, "Go")
	learner := testutil.SeedLearner(t, ctx, s.db, 1)

	cases := []struct {
		name      string
		learnerID uint
		courseID  uint
		mode      model.EnrollmentMode
		want      error
	}{
		{"unknown learner", 999, course.ID, "", util.ErrNotFound},
		{"unknown course", learner.ID, 999, "", util.ErrNotFound},
		{"bad mode", learner.ID, course.ID, "vip", util.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.enrollment.Enroll(ctx, tc.learnerID, tc.courseID, tc.mode)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if got := s.course(t, course.ID).TotalEnrollment; got != 0 {
		t.Fatalf("total_enrollment = %d, want 0", got)
	}
}

func TestUnenrollCascadesSubmissions(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, nil)
	course := testutil.SeedCourse(t, ctx, s.db, "Go")
	sc := seedScenario(t, ctx, s.db, course.ID, 1)
	l1 := testutil.SeedLearner(t, ctx, s.db, 1)
	l2 := testutil.SeedLearner(t, ctx, s.db, 2)

	e1, err := s.enrollment.Enroll(ctx, l1.ID, course.ID, "")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if _, err := s.enrollment.Enroll(ctx, l2.ID, course.ID, ""); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	res, err := s.grading.Grade(ctx, e1.ID, sc.lesson.ID, []uint{sc.a, sc.b, sc.c})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}

	if err := s.enrollment.Unenroll(ctx, e1.ID); err != nil {
		t.Fatalf("Unenroll: %v", err)
	}
	if got := s.course(t, course.ID).TotalEnrollment; got != 1 {
		t.Fatalf("total_enrollment = %d, want 1", got)
	}

	var subs, picks int64
	s.db.Model(&model.Submission{}).Where("enrollment_id = ?", e1.ID).Count(&subs)
	s.db.Model(&model.SubmissionChoice{}).Where("submission_id = ?", res.Submission.ID).Count(&picks)
	if subs != 0 || picks != 0 {
		t.Fatalf("leftover submissions=%d choices=%d", subs, picks)
	}

	if _, err := s.enrollment.GetEnrollment(ctx, e1.ID); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("GetEnrollment err = %v, want ErrNotFound", err)
	}
	if err := s.enrollment.Unenroll(ctx, e1.ID); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("second Unenroll err = %v, want ErrNotFound", err)
	}

	again, err := s.enrollment.Enroll(ctx, l1.ID, course.ID, "")
	if err != nil {
		t.Fatalf("re-Enroll: %v", err)
	}
	if again.Rating != 0 {
		t.Fatalf("re-enrollment rating = %v, want 0", again.Rating)
	}
	if got := s.course(t, course.ID).TotalEnrollment; got != 2 {
		t.Fatalf("total_enrollment = %d, want 2", got)
	}
}

func TestEnrollReconcilesDriftedTotal(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, nil)
	course := testutil.SeedCourse(t, ctx, s.db, "Go")
	l1 := testutil.SeedLearner(t, ctx, s.db, 1)
	l2 := testutil.SeedLearner(t, ctx, s.db, 2)

	testutil.SeedEnrollment(t, ctx, s.db, l1.ID, course.ID)
	s.db.Model(&model.Course{}).Where("id = ?", course.ID).Update("total_enrollment", 42)

	if _, err := s.enrollment.Enroll(ctx, l2.ID, course.ID, ""); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if got := s.course(t, course.ID).TotalEnrollment; got != 2 {
		t.Fatalf("total_enrollment = %d, want 2", got)
	}
}

func TestGetEnrollmentStatus(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, nil)
	course := testutil.SeedCourse(t, ctx, s.db, "Go")
	sc := seedScenario(t, ctx, s.db, course.ID, 1)
	learner := testutil.SeedLearner(t, ctx, s.db, 1)

	e, err := s.enrollment.Enroll(ctx, learner.ID, course.ID, "")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	d, err := s.enrollment.GetEnrollment(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEnrollment: %v", err)
	}
	if d.Status != model.EnrollmentActive || d.SubmissionCount != 0 {
		t.Fatalf("status=%q count=%d, want active and 0", d.Status, d.SubmissionCount)
	}

	// a zero score still counts as graded
	if _, err := s.grading.Grade(ctx, e.ID, sc.lesson.ID, nil); err != nil {
		t.Fatalf("Grade: %v", err)
	}
	d, err = s.enrollment.GetEnrollment(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEnrollment: %v", err)
	}
	if d.Status != model.EnrollmentGraded || d.SubmissionCount != 1 {
		t.Fatalf("status=%q count=%d, want graded and 1", d.Status, d.SubmissionCount)
	}

	list, err := s.enrollment.ListEnrollments(ctx, course.ID)
	if err != nil {
		t.Fatalf("ListEnrollments: %v", err)
	}
	if len(list) != 1 || list[0].ID != e.ID {
		t.Fatalf("ListEnrollments = %+v", list)
	}
}

func TestEnrollConcurrentSamePairAcceptsOne(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, nil)
	course := testutil.SeedCourse(t, ctx, s.db, "Go")
	learner := testutil.SeedLearner(t, ctx, s.db, 1)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.enrollment.Enroll(ctx, learner.ID, course.ID, model.ModeHonor)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, util.ErrDuplicateEnrollment):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != 1 {
		t.Fatalf("accepted %d enrollments, want 1", accepted)
	}
	var rows int64
	if err := s.db.Model(&model.Enrollment{}).Where("learner_id = ? AND course_id = ?", learner.ID, course.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count enrollments: %v", err)
	}
	if rows != 1 {
		t.Fatalf("enrollment rows = %d, want 1", rows)
	}
	if got := s.course(t, course.ID).TotalEnrollment; got != 1 {
		t.Fatalf("total_enrollment = %d, want 1", got)
	}
}

package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/middleware"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/testutil"
	"onlinecourse_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)

	catalogRepo := repository.NewCatalogRepository(db)
	peopleRepo := repository.NewPeopleRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	agg := service.NewAggregationService(db, catalogRepo, enrollmentRepo, submissionRepo, nil)
	enrollmentSvc := service.NewEnrollmentService(db, catalogRepo, peopleRepo, enrollmentRepo, submissionRepo, agg)
	gradingSvc := service.NewGradingService(db, catalogRepo, enrollmentRepo, submissionRepo, agg)

	catalog := NewCatalogController(service.NewCatalogService(db, catalogRepo, peopleRepo))
	people := NewPeopleController(service.NewPeopleService(peopleRepo))
	enrollment := NewEnrollmentController(enrollmentSvc)
	submission := NewSubmissionController(gradingSvc, enrollmentSvc)
	stats := NewStatsController(agg, enrollmentSvc)

	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	r := gin.New()
	r.GET("/api/health", NewHealthController(db).HealthCheck)
	api := r.Group("/api", middleware.AuthMiddleware(cfg))
	api.GET("/lessons/:id/questions", catalog.ListQuestions)
	api.GET("/learners/:id", people.GetLearner)
	api.POST("/enrollments", enrollment.Enroll)
	api.DELETE("/enrollments/:id", enrollment.Unenroll)
	api.POST("/enrollments/:id/submissions", submission.Grade)
	api.GET("/enrollments/:id/rating", stats.GetEnrollmentRating)

	instructor := api.Group("", middleware.RoleMiddleware(util.RoleInstructor))
	instructor.POST("/courses", catalog.CreateCourse)
	instructor.GET("/courses/:id/stats", stats.GetCourseStats)
	instructor.GET("/courses/:id/enrollments", enrollment.ListEnrollments)
	instructor.DELETE("/submissions/:id", submission.ResetSubmission)
	return r, db
}

func bearer(t *testing.T, claims util.Claims) string {
	t.Helper()
	tok, err := util.GenerateJWT(claims, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return "Bearer " + tok
}

func do(t *testing.T, r *gin.Engine, method, path, auth string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestRouter(t)
	code, env := do(t, r, http.MethodGet, "/api/health", "", nil)
	if code != http.StatusOK || env.Code != http.StatusOK {
		t.Fatalf("health = %d %+v", code, env)
	}
}

func TestGradeFlowOverHTTP(t *testing.T) {
	ctx := context.Background()
	r, db := newTestRouter(t)

	course := testutil.SeedCourse(t, ctx, db, "Go")
	lesson := testutil.SeedLesson(t, ctx, db, course.ID, 1)
	q1 := testutil.SeedQuestion(t, ctx, db, lesson.ID, 1, true, false)
	q2 := testutil.SeedQuestion(t, ctx, db, lesson.ID, 3, false, true, true)
	other := testutil.SeedLesson(t, ctx, db, course.ID, 2)
	foreign := testutil.SeedQuestion(t, ctx, db, other.ID, 1, true)

	alice := testutil.SeedLearner(t, ctx, db, 10)
	bob := testutil.SeedLearner(t, ctx, db, 11)
	aliceAuth := bearer(t, util.Claims{UserID: 10, Role: util.RoleLearner, LearnerID: alice.ID})
	bobAuth := bearer(t, util.Claims{UserID: 11, Role: util.RoleLearner, LearnerID: bob.ID})
	teaching := testutil.SeedInstructor(t, ctx, db, 20)
	testutil.AssignInstructor(t, ctx, db, course, teaching)
	instructorAuth := bearer(t, util.Claims{UserID: 20, Role: util.RoleInstructor, InstructorID: teaching.ID})

	// learner id comes from the token, not the body
	code, env := do(t, r, http.MethodPost, "/api/enrollments", aliceAuth, gin.H{"courseId": course.ID, "learnerId": bob.ID})
	if code != http.StatusCreated {
		t.Fatalf("enroll = %d %s", code, env.Message)
	}
	var enrollment struct {
		ID        uint `json:"id"`
		LearnerID uint `json:"learnerId"`
	}
	if err := json.Unmarshal(env.Data, &enrollment); err != nil {
		t.Fatalf("decode enrollment: %v", err)
	}
	if enrollment.LearnerID != alice.ID {
		t.Fatalf("enrolled learner %d, want %d", enrollment.LearnerID, alice.ID)
	}
	if code, _ := do(t, r, http.MethodPost, "/api/enrollments", aliceAuth, gin.H{"courseId": course.ID}); code != http.StatusConflict {
		t.Fatalf("duplicate enroll = %d, want 409", code)
	}

	gradePath := fmt.Sprintf("/api/enrollments/%d/submissions", enrollment.ID)
	if code, _ := do(t, r, http.MethodPost, gradePath, bobAuth, gin.H{"lessonId": lesson.ID}); code != http.StatusForbidden {
		t.Fatalf("grade by other learner = %d, want 403", code)
	}
	mixed := []uint{q1.Choices[0].ID, foreign.Choices[0].ID}
	if code, _ := do(t, r, http.MethodPost, gradePath, aliceAuth, gin.H{"lessonId": lesson.ID, "choiceIds": mixed}); code != http.StatusUnprocessableEntity {
		t.Fatalf("foreign choice = %d, want 422", code)
	}
	if code, _ := do(t, r, http.MethodPost, gradePath, aliceAuth, gin.H{"lessonId": 9999}); code != http.StatusNotFound {
		t.Fatalf("missing lesson = %d, want 404", code)
	}

	picked := []uint{q1.Choices[0].ID, q2.Choices[1].ID}
	code, env = do(t, r, http.MethodPost, gradePath, aliceAuth, gin.H{"lessonId": lesson.ID, "choiceIds": picked})
	if code != http.StatusCreated {
		t.Fatalf("grade = %d %s", code, env.Message)
	}
	var result struct {
		Score  float64 `json:"score"`
		Rating float64 `json:"rating"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Score != 0.25 || result.Rating != 25 {
		t.Fatalf("score=%v rating=%v, want 0.25 and 25", result.Score, result.Rating)
	}
	if code, _ := do(t, r, http.MethodPost, gradePath, aliceAuth, gin.H{"lessonId": lesson.ID, "choiceIds": picked}); code != http.StatusConflict {
		t.Fatalf("second attempt = %d, want 409", code)
	}

	if code, _ := do(t, r, http.MethodGet, fmt.Sprintf("/api/courses/%d/stats", course.ID), aliceAuth, nil); code != http.StatusForbidden {
		t.Fatalf("learner stats = %d, want 403", code)
	}
	code, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/courses/%d/stats", course.ID), instructorAuth, nil)
	if code != http.StatusOK {
		t.Fatalf("stats = %d %s", code, env.Message)
	}
	var stats struct {
		TotalEnrollment int64 `json:"totalEnrollment"`
	}
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalEnrollment != 1 {
		t.Fatalf("total enrollment = %d, want 1", stats.TotalEnrollment)
	}
}

func TestQuestionsHideAnswersFromLearners(t *testing.T) {
	ctx := context.Background()
	r, db := newTestRouter(t)
	course := testutil.SeedCourse(t, ctx, db, "Go")
	lesson := testutil.SeedLesson(t, ctx, db, course.ID, 1)
	testutil.SeedQuestion(t, ctx, db, lesson.ID, 1, true, false)

	path := fmt.Sprintf("/api/lessons/%d/questions", lesson.ID)
	correctCount := func(auth string) int {
		code, env := do(t, r, http.MethodGet, path, auth, nil)
		if code != http.StatusOK {
			t.Fatalf("list questions = %d", code)
		}
		var qs []struct {
			Choices []struct {
				IsCorrect bool `json:"isCorrect"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(env.Data, &qs); err != nil {
			t.Fatalf("decode questions: %v", err)
		}
		n := 0
		for _, q := range qs {
			for _, c := range q.Choices {
				if c.IsCorrect {
					n++
				}
			}
		}
		return n
	}

	if n := correctCount(bearer(t, util.Claims{UserID: 1, Role: util.RoleLearner, LearnerID: 1})); n != 0 {
		t.Fatalf("learner saw %d correct flags", n)
	}
	if n := correctCount(bearer(t, util.Claims{UserID: 2, Role: util.RoleInstructor})); n != 1 {
		t.Fatalf("instructor saw %d correct flags, want 1", n)
	}
}

func TestCreateCourseValidationOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	auth := bearer(t, util.Claims{UserID: 2, Role: util.RoleInstructor})

	if code, _ := do(t, r, http.MethodPost, "/api/courses", auth, gin.H{"description": "no name"}); code != http.StatusBadRequest {
		t.Fatalf("missing name = %d, want 400", code)
	}
	if code, _ := do(t, r, http.MethodPost, "/api/courses", auth, gin.H{"name": "Go"}); code != http.StatusCreated {
		t.Fatalf("create = %d, want 201", code)
	}
}

func TestInstructorScopedToAssignedCourses(t *testing.T) {
	ctx := context.Background()
	r, db := newTestRouter(t)

	course := testutil.SeedCourse(t, ctx, db, "Go")
	lesson := testutil.SeedLesson(t, ctx, db, course.ID, 1)
	q := testutil.SeedQuestion(t, ctx, db, lesson.ID, 1, true, false)
	other := testutil.SeedCourse(t, ctx, db, "Rust")

	assigned := testutil.SeedInstructor(t, ctx, db, 30)
	outsider := testutil.SeedInstructor(t, ctx, db, 31)
	testutil.AssignInstructor(t, ctx, db, course, assigned)
	testutil.AssignInstructor(t, ctx, db, other, outsider)
	assignedAuth := bearer(t, util.Claims{UserID: 30, Role: util.RoleInstructor, InstructorID: assigned.ID})
	outsiderAuth := bearer(t, util.Claims{UserID: 31, Role: util.RoleInstructor, InstructorID: outsider.ID})
	adminAuth := bearer(t, util.Claims{UserID: 1, Role: util.RoleAdmin})

	alice := testutil.SeedLearner(t, ctx, db, 10)
	aliceAuth := bearer(t, util.Claims{UserID: 10, Role: util.RoleLearner, LearnerID: alice.ID})

	if code, _ := do(t, r, http.MethodPost, "/api/enrollments", outsiderAuth, gin.H{"courseId": course.ID, "learnerId": alice.ID}); code != http.StatusForbidden {
		t.Fatalf("enroll by unassigned instructor = %d, want 403", code)
	}
	code, env := do(t, r, http.MethodPost, "/api/enrollments", aliceAuth, gin.H{"courseId": course.ID})
	if code != http.StatusCreated {
		t.Fatalf("enroll = %d %s", code, env.Message)
	}
	var enrollment struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &enrollment); err != nil {
		t.Fatalf("decode enrollment: %v", err)
	}

	code, env = do(t, r, http.MethodPost, fmt.Sprintf("/api/enrollments/%d/submissions", enrollment.ID), aliceAuth,
		gin.H{"lessonId": lesson.ID, "choiceIds": []uint{q.Choices[0].ID}})
	if code != http.StatusCreated {
		t.Fatalf("grade = %d %s", code, env.Message)
	}
	var graded struct {
		Submission struct {
			ID string `json:"id"`
		} `json:"submission"`
	}
	if err := json.Unmarshal(env.Data, &graded); err != nil {
		t.Fatalf("decode grade result: %v", err)
	}

	cases := []struct {
		name   string
		method string
		path   string
	}{
		{"stats", http.MethodGet, fmt.Sprintf("/api/courses/%d/stats", course.ID)},
		{"enrollments", http.MethodGet, fmt.Sprintf("/api/courses/%d/enrollments", course.ID)},
		{"rating", http.MethodGet, fmt.Sprintf("/api/enrollments/%d/rating", enrollment.ID)},
		{"reset", http.MethodDelete, "/api/submissions/" + graded.Submission.ID},
		{"unenroll", http.MethodDelete, fmt.Sprintf("/api/enrollments/%d", enrollment.ID)},
	}
	for _, tc := range cases {
		if code, _ := do(t, r, tc.method, tc.path, outsiderAuth, nil); code != http.StatusForbidden {
			t.Fatalf("%s by unassigned instructor = %d, want 403", tc.name, code)
		}
	}
	// an instructor token without a profile is treated the same way
	if code, _ := do(t, r, http.MethodGet, cases[0].path, bearer(t, util.Claims{UserID: 32, Role: util.RoleInstructor}), nil); code != http.StatusForbidden {
		t.Fatalf("stats without instructor profile = %d, want 403", code)
	}

	for _, tc := range cases[:3] {
		if code, env := do(t, r, tc.method, tc.path, assignedAuth, nil); code != http.StatusOK {
			t.Fatalf("%s by assigned instructor = %d %s", tc.name, code, env.Message)
		}
	}
	if code, env := do(t, r, http.MethodDelete, cases[3].path, assignedAuth, nil); code != http.StatusOK {
		t.Fatalf("reset by assigned instructor = %d %s", code, env.Message)
	}
	if code, env := do(t, r, http.MethodGet, cases[0].path, adminAuth, nil); code != http.StatusOK {
		t.Fatalf("stats by admin = %d %s", code, env.Message)
	}
}

func TestLearnerProfileVisibility(t *testing.T) {
	ctx := context.Background()
	r, db := newTestRouter(t)
	alice := testutil.SeedLearner(t, ctx, db, 10)
	bob := testutil.SeedLearner(t, ctx, db, 11)
	aliceAuth := bearer(t, util.Claims{UserID: 10, Role: util.RoleLearner, LearnerID: alice.ID})

	if code, _ := do(t, r, http.MethodGet, fmt.Sprintf("/api/learners/%d", alice.ID), aliceAuth, nil); code != http.StatusOK {
		t.Fatalf("own profile = %d, want 200", code)
	}
	if code, _ := do(t, r, http.MethodGet, fmt.Sprintf("/api/learners/%d", bob.ID), aliceAuth, nil); code != http.StatusForbidden {
		t.Fatalf("other learner profile = %d, want 403", code)
	}
	instructorAuth := bearer(t, util.Claims{UserID: 20, Role: util.RoleInstructor, InstructorID: 1})
	if code, _ := do(t, r, http.MethodGet, fmt.Sprintf("/api/learners/%d", bob.ID), instructorAuth, nil); code != http.StatusOK {
		t.Fatalf("instructor reading profile = %d, want 200", code)
	}
}

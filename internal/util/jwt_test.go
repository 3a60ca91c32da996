package util

import (
	"onlinecourse_backend/internal/model"
	"testing"
	"time"
)

func TestParseJWTRoundTrip(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"
	tok, err := GenerateJWT(Claims{UserID: 7, Role: RoleInstructor, InstructorID: 3}, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ParseJWT(tok, secret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 7 || claims.Role != RoleInstructor || claims.InstructorID != 3 {
		t.Fatalf("claims = %+v", claims)
	}
	if _, err := ParseJWT(tok, "another-secret-another-secret-xx"); err == nil {
		t.Fatal("token accepted with the wrong secret")
	}
}

func TestCanActAsLearner(t *testing.T) {
	e := &model.Enrollment{LearnerID: 5}
	cases := []struct {
		name   string
		claims *Claims
		want   bool
	}{
		{"owner", &Claims{Role: RoleLearner, LearnerID: 5}, true},
		{"other learner", &Claims{Role: RoleLearner, LearnerID: 6}, false},
		{"learner without profile", &Claims{Role: RoleLearner}, false},
		{"admin", &Claims{Role: RoleAdmin}, true},
		{"instructor", &Claims{Role: RoleInstructor, InstructorID: 1}, false},
		{"no claims", nil, false},
	}
	for _, tc := range cases {
		if got := tc.claims.CanActAsLearner(e); got != tc.want {
			t.Fatalf("%s: CanActAsLearner = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanReadLearner(t *testing.T) {
	cases := []struct {
		name   string
		claims *Claims
		want   bool
	}{
		{"self", &Claims{Role: RoleLearner, LearnerID: 5}, true},
		{"other learner", &Claims{Role: RoleLearner, LearnerID: 6}, false},
		{"instructor", &Claims{Role: RoleInstructor}, true},
		{"admin", &Claims{Role: RoleAdmin}, true},
		{"unknown role", &Claims{Role: "guest", LearnerID: 5}, false},
	}
	for _, tc := range cases {
		if got := tc.claims.CanReadLearner(5); got != tc.want {
			t.Fatalf("%s: CanReadLearner = %v, want %v", tc.name, got, tc.want)
		}
	}
}

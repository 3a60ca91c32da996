package util

import (
	"errors"
	"onlinecourse_backend/internal/model"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleLearner    Role = "learner"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Claims is the identity the surrounding shell resolved for the caller.
// Tokens are issued elsewhere; this service only verifies them.
type Claims struct {
	UserID       uint `json:"user_id"`
	Role         Role `json:"role"`
	LearnerID    uint `json:"learner_id,omitempty"`
	InstructorID uint `json:"instructor_id,omitempty"`
	jwt.RegisteredClaims
}

func GenerateJWT(claims Claims, secret string, expiration time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token claims")
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// CanActAsLearner reports whether the caller may act on the enrollment as
// its learner. Instructors are checked against the course separately.
func (c *Claims) CanActAsLearner(e *model.Enrollment) bool {
	if c == nil || e == nil {
		return false
	}
	if c.Role == RoleAdmin {
		return true
	}
	return c.Role == RoleLearner && c.LearnerID != 0 && c.LearnerID == e.LearnerID
}

// CanReadLearner: learners only see their own profile.
func (c *Claims) CanReadLearner(learnerID uint) bool {
	if c == nil {
		return false
	}
	switch c.Role {
	case RoleAdmin, RoleInstructor:
		return true
	case RoleLearner:
		return c.LearnerID != 0 && c.LearnerID == learnerID
	}
	return false
}

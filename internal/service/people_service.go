package service

import (
	"context"
	"errors"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"strings"

	"gorm.io/gorm"
)

// PeopleService registers learner and instructor profiles for existing users.
type PeopleService struct {
	Repo *repository.PeopleRepository
}

func NewPeopleService(repo *repository.PeopleRepository) *PeopleService {
	return &PeopleService{Repo: repo}
}

type LearnerReq struct {
	UserID     uint             `json:"userId" binding:"required"`
	Occupation model.Occupation `json:"occupation"`
	SocialLink string           `json:"socialLink"`
}

type InstructorReq struct {
	UserID   uint `json:"userId" binding:"required"`
	FullTime bool `json:"fullTime"`
}

func (s *PeopleService) CreateLearner(ctx context.Context, req LearnerReq) (*model.Learner, error) {
	if req.UserID == 0 {
		return nil, validation("userId is required")
	}
	if req.Occupation == "" {
		req.Occupation = model.OccupationStudent
	}
	if !req.Occupation.Valid() {
		return nil, validation("unknown occupation %q", req.Occupation)
	}
	learner := &model.Learner{
		UserID:     req.UserID,
		Occupation: req.Occupation,
		SocialLink: strings.TrimSpace(req.SocialLink),
	}
	if err := s.Repo.CreateLearner(ctx, learner); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validation("user %d already has a learner profile", req.UserID)
		}
		return nil, err
	}
	return learner, nil
}

func (s *PeopleService) GetLearner(ctx context.Context, id uint) (*model.Learner, error) {
	l, err := s.Repo.FindLearnerByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "learner", id)
	}
	return l, nil
}

func (s *PeopleService) CreateInstructor(ctx context.Context, req InstructorReq) (*model.Instructor, error) {
	if req.UserID == 0 {
		return nil, validation("userId is required")
	}
	instructor := &model.Instructor{UserID: req.UserID, FullTime: req.FullTime}
	if err := s.Repo.CreateInstructor(ctx, instructor); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validation("user %d already has an instructor profile", req.UserID)
		}
		return nil, err
	}
	return instructor, nil
}

func (s *PeopleService) GetInstructor(ctx context.Context, id uint) (*model.Instructor, error) {
	i, err := s.Repo.FindInstructorByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "instructor", id)
	}
	return i, nil
}

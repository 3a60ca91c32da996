package repository

import (
	"context"
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type PeopleRepository struct {
	DB *gorm.DB
}

func NewPeopleRepository(db *gorm.DB) *PeopleRepository {
	return &PeopleRepository{DB: db}
}

func (r *PeopleRepository) WithTx(tx *gorm.DB) *PeopleRepository {
	return &PeopleRepository{DB: tx}
}

func (r *PeopleRepository) CreateLearner(ctx context.Context, learner *model.Learner) error {
	return r.DB.WithContext(ctx).Create(learner).Error
}

func (r *PeopleRepository) FindLearnerByID(ctx context.Context, id uint) (*model.Learner, error) {
	var l model.Learner
	if err := r.DB.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PeopleRepository) CreateInstructor(ctx context.Context, instructor *model.Instructor) error {
	return r.DB.WithContext(ctx).Create(instructor).Error
}

func (r *PeopleRepository) FindInstructorByID(ctx context.Context, id uint) (*model.Instructor, error) {
	var i model.Instructor
	if err := r.DB.WithContext(ctx).First(&i, id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

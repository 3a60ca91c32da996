package service

import (
	"errors"
	"fmt"
	"onlinecourse_backend/internal/util"

	"gorm.io/gorm"
)

// notFound wraps a missing-row error as util.ErrNotFound with the entity name.
func notFound(err error, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", entity, id, util.ErrNotFound)
	}
	return err
}

func validation(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), util.ErrValidation)
}

package persistence

import (
	"errors"

	"github.com/jossiefancies/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM errors to the shared domain errors
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// first loads one T matching the condition, or shared.ErrNotFound
func first[T any](q *gorm.DB, query string, args ...any) (*T, error) {
	var row T
	if err := q.Where(query, args...).First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return &row, nil
}

// exists reports whether any T matches the condition
func exists[T any](q *gorm.DB, query string, args ...any) (bool, error) {
	var count int64
	if err := q.Model(new(T)).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// deleteOne deletes the T with id, or returns shared.ErrNotFound when no row
// was removed
func deleteOne[T any](q *gorm.DB, id any) error {
	result := q.Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

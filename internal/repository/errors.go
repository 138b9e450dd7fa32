package repository

import (
	"errors"

	"github.com/lshigami/vaikuntha/internal/apierr"
	"gorm.io/gorm"
)

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Translate maps gorm errors to API errors. entity names the resource, e.g. "course".
func Translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierr.NotFound(entity+"_not_found", "%s not found", entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierr.Conflict("conflict", "%s already exists", entity)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apierr.Conflict("conflict", "%s is referenced by other records", entity)
	default:
		return err
	}
}

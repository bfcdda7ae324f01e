package repository

import (
	"errors"
	"fmt"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/infra"
	"gorm.io/gorm"
)

// translate maps a GORM/driver error onto the apierror taxonomy so services
// never have to inspect driver types. what names the entity for the message.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apierror.ErrNotFound),
		errors.Is(err, apierror.ErrConflict),
		errors.Is(err, apierror.ErrUnavailable),
		errors.Is(err, apierror.ErrInsufficientStock):
		return err
	case infra.IsUnavailable(err):
		return fmt.Errorf("%w: %w", apierror.ErrUnavailable, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", apierror.ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey), infra.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s duplicado", apierror.ErrConflict, what)
	case errors.Is(err, gorm.ErrForeignKeyViolated), infra.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s referenciado o referencia inexistente", apierror.ErrConflict, what)
	case errors.Is(err, gorm.ErrCheckConstraintViolated), infra.IsCheckViolation(err):
		return fmt.Errorf("%w: %s viola una restriccion", apierror.ErrValidation, what)
	default:
		return err
	}
}

func notFound(what string, id uint) error {
	return fmt.Errorf("%w: %s %d", apierror.ErrNotFound, what, id)
}

// findErr is translate for single-row lookups by id.
func findErr(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what, id)
	}
	return translate(err, what)
}

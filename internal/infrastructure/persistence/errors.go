package persistence

import (
	"errors"

	"github.com/erp/posting/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM sentinel errors onto domain errors. A unique
// violation becomes onConflict; everything else passes through.
func translateError(err error, onConflict *shared.DomainError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey) && onConflict != nil:
		return onConflict
	default:
		return err
	}
}

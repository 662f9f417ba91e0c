package store

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dmitrijs2005/textkeeper/internal/common"
)

const (
	MaxIDLength         = 128
	MaxTitleLength      = 512
	MaxFolderNameLength = 256
)

// Validate folds per-field errors into a single common.ErrValidation error.
// Nil entries are ignored.
func Validate(fields validation.Errors) error {
	if err := fields.Filter(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}

// CheckID requires a non-empty identifier.
func CheckID(id string) error {
	return validation.Validate(id, validation.Required, validation.RuneLength(1, MaxIDLength))
}

// CheckOptionalID accepts nil or a non-empty identifier.
func CheckOptionalID(id *string) error {
	return validation.Validate(id, validation.NilOrNotEmpty, validation.RuneLength(1, MaxIDLength))
}

// CheckTitle bounds the title length. Blank titles are allowed and become
// the default title.
func CheckTitle(title string) error {
	return validation.Validate(title, validation.RuneLength(0, MaxTitleLength))
}

// CheckFolderName requires a non-blank, bounded name.
func CheckFolderName(name string) error {
	return validation.Validate(name, validation.Required, validation.RuneLength(1, MaxFolderNameLength))
}

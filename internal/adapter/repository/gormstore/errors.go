package gormstore

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// translate normalizes unique-constraint violations to gorm.ErrDuplicatedKey
// for dialectors that do not translate them (TranslateError may be off).
func translate(err error) error {
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value") {
		return fmt.Errorf("%w: %s", gorm.ErrDuplicatedKey, msg)
	}
	return err
}

package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isUniqueViolation matches duplicate-key errors across postgres and the
// sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

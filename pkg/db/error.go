package db

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrStorageUnavailable is returned when a store operation cannot complete.
var ErrStorageUnavailable = errors.New("storage_unavailable")

// Unavailable wraps a driver error so callers can match ErrStorageUnavailable
// while the cause stays in the chain.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

// duplicateMarkers are the unique-violation messages of the supported
// dialects: postgres 23505, mysql 1062, sqlite 2067.
var duplicateMarkers = []string{
	"duplicate key value violates unique constraint",
	"Error 1062",
	"UNIQUE constraint failed",
}

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range duplicateMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

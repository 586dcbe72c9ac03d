package services

import (
	"errors"
	"strconv"

	"github.com/anonto42/blogsphere/backend/internal/repositories"
)

// notFoundOr maps a repository miss to the given user-facing error.
func notFoundOr(err error, notFound error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound
	}
	return err
}

func uintPtr(v uint) *uint {
	return &v
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

package session

import (
	"errors"

	"github.com/bellamaterna/storefront/internal/repository"
)

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

package service

import (
	"errors"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/store"
)

// fromStore classifies a store error. A missing document becomes NotFound
// with notFound as the client message; anything else is an upstream failure.
func fromStore(err error, op, notFound string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound(notFound)
	}
	return apperrors.Upstream("failed to "+op, err)
}

package service

import (
	"errors"

	"github.com/hotelmend/ticket-service/internal/persistence/docstore"
	apperrors "github.com/hotelmend/ticket-service/pkg/util/errorutil"
)

// storeFailure maps a repository error onto the error kinds callers can
// tell apart: a missing document becomes NotFound, anything else StoreError.
func storeFailure(err error, resource string, id string) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.NewStoreError(err)
}

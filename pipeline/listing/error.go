package listing

import (
	"net/http"

	"github.com/applyflow/applyflow/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("LISTING")

var (
	CodeListingNotFound  = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Listing not found")
	CodeInvalidListing   = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation, http.StatusBadRequest, "Invalid listing data")
	CodePersistenceError = ErrRegistry.Register("PERSISTENCE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to persist listing")
	CodeSearchFailed     = ErrRegistry.Register("SEARCH_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Listing search failed")
)

func ErrListingNotFound() *errx.Error {
	return ErrRegistry.New(CodeListingNotFound)
}

func ErrInvalidListing() *errx.Error {
	return ErrRegistry.New(CodeInvalidListing)
}

func ErrPersistenceFailed() *errx.Error {
	return ErrRegistry.New(CodePersistenceError)
}

func ErrSearchFailed() *errx.Error {
	return ErrRegistry.New(CodeSearchFailed)
}

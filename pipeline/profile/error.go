package profile

import (
	"net/http"

	"github.com/applyflow/applyflow/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("PROFILE")

var (
	CodeProfileNotFound   = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Candidate profile not found")
	CodeInvalidProfile    = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation, http.StatusBadRequest, "Invalid profile data")
	CodeDocumentReadError = ErrRegistry.Register("DOCUMENT_READ_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to read candidate document")
	CodePersistenceError  = ErrRegistry.Register("PERSISTENCE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to persist candidate profile")
)

func ErrProfileNotFound() *errx.Error {
	return ErrRegistry.New(CodeProfileNotFound)
}

func ErrInvalidProfile() *errx.Error {
	return ErrRegistry.New(CodeInvalidProfile)
}

func ErrDocumentReadFailed() *errx.Error {
	return ErrRegistry.New(CodeDocumentReadError)
}

func ErrPersistenceFailed() *errx.Error {
	return ErrRegistry.New(CodePersistenceError)
}

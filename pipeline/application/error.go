package application

import (
	"net/http"

	"github.com/applyflow/applyflow/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("APPLICATION")

var (
	CodeRecordNotFound   = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Application record not found")
	CodePersistenceError = ErrRegistry.Register("PERSISTENCE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to read application records")
)

func ErrRecordNotFound() *errx.Error {
	return ErrRegistry.New(CodeRecordNotFound)
}

func ErrPersistenceFailed() *errx.Error {
	return ErrRegistry.New(CodePersistenceError)
}

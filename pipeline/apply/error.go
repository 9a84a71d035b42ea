package apply

import (
	"net/http"

	"github.com/applyflow/applyflow/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("APPLY")

var (
	CodeJobNotFound      = ErrRegistry.Register("JOB_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Application job not found")
	CodeJobNotClaimable  = ErrRegistry.Register("JOB_NOT_CLAIMABLE", errx.TypeConflict, http.StatusConflict, "Application job is not in a claimable state")
	CodePersistenceError = ErrRegistry.Register("PERSISTENCE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to persist application job")
	CodeQueueError       = ErrRegistry.Register("QUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Application queue operation failed")
)

func ErrJobNotFound() *errx.Error {
	return ErrRegistry.New(CodeJobNotFound)
}

func ErrJobNotClaimable() *errx.Error {
	return ErrRegistry.New(CodeJobNotClaimable)
}

func ErrPersistenceFailed() *errx.Error {
	return ErrRegistry.New(CodePersistenceError)
}

func ErrQueueFailed() *errx.Error {
	return ErrRegistry.New(CodeQueueError)
}

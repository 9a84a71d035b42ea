package match

import (
	"net/http"

	"github.com/applyflow/applyflow/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("MATCH")

var (
	CodeMatchNotFound    = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Match not found")
	CodeAlreadyReviewed  = ErrRegistry.Register("ALREADY_REVIEWED", errx.TypeConflict, http.StatusConflict, "Match has already been reviewed")
	CodeInvalidReview    = ErrRegistry.Register("INVALID_REVIEW", errx.TypeValidation, http.StatusBadRequest, "Invalid review request")
	CodeScoringFailed    = ErrRegistry.Register("SCORING_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Scoring pass failed")
	CodePersistenceError = ErrRegistry.Register("PERSISTENCE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to persist match")
)

func ErrMatchNotFound() *errx.Error {
	return ErrRegistry.New(CodeMatchNotFound)
}

func ErrAlreadyReviewed() *errx.Error {
	return ErrRegistry.New(CodeAlreadyReviewed)
}

func ErrInvalidReview() *errx.Error {
	return ErrRegistry.New(CodeInvalidReview)
}

func ErrScoringFailed() *errx.Error {
	return ErrRegistry.New(CodeScoringFailed)
}

func ErrPersistenceFailed() *errx.Error {
	return ErrRegistry.New(CodePersistenceError)
}

package entity

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error wraps exactly one of them,
// anything else reaching the API layer is an internal failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// Domain errors
var (
	// Case errors
	ErrCaseNotFound = fmt.Errorf("case %w", ErrNotFound)
	ErrCaseLocked   = fmt.Errorf("case interview is locked: %w", ErrConflict)

	// Session errors
	ErrSessionNotFound  = fmt.Errorf("interview session %w", ErrNotFound)
	ErrSessionForbidden = fmt.Errorf("interview session belongs to another user: %w", ErrForbidden)
	ErrSessionExpired   = fmt.Errorf("interview session has expired: %w", ErrConflict)
	ErrSessionNotActive = fmt.Errorf("interview session is not active: %w", ErrConflict)
	ErrSessionCompleted = fmt.Errorf("interview session is already completed: %w", ErrConflict)
	ErrStartRaceLost    = fmt.Errorf("another interview session was started for the case: %w", ErrConflict)
	ErrNarrowingDone    = fmt.Errorf("interview has reached a recommendation, complete the session: %w", ErrConflict)

	// Recommendation errors
	ErrRecommendationNotFound = fmt.Errorf("recommendation %w", ErrNotFound)
	ErrInvalidVisaCode        = fmt.Errorf("visa code is not among remaining candidates: %w", ErrInvalidInput)

	// Validation errors
	ErrMissingField     = fmt.Errorf("required field is missing: %w", ErrInvalidInput)
	ErrInvalidFormat    = fmt.Errorf("invalid format: %w", ErrInvalidInput)
	ErrInvalidParameter = fmt.Errorf("invalid parameter: %w", ErrInvalidInput)
	ErrUnknownOption    = fmt.Errorf("answer is not one of the question options: %w", ErrInvalidInput)
)

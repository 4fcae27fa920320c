package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound      = errors.New("resource not found")
	ErrStudyNotFound = fmt.Errorf("%w: study", ErrNotFound)

	// Validation errors
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNoFormulation    = errors.New("no formulation column derivable")
	ErrNoEndpoint       = errors.New("no numeric endpoint column found")
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// NewInvalidParameterError describes a rejected input value
func NewInvalidParameterError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidParameter, field, reason)
}

// NewInsufficientDataError names the analysis that could not proceed
func NewInsufficientDataError(analysis string, need, have int) error {
	return fmt.Errorf("%w: %s needs at least %d observations, have %d", ErrInsufficientData, analysis, need, have)
}

// IsNotFoundError checks for any not-found variant
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidParameter checks for parameter validation failures
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

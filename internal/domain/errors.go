package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrInsufficientStock is a validation failure: removing more units than
	// the ledger holds.
	ErrInsufficientStock error = &detailError{kind: ErrValidation, msg: "not enough units available"}
)

// detailError carries a caller-facing message while still matching its kind
// through errors.Is.
type detailError struct {
	kind error
	msg  string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.kind }

func NotFoundf(format string, args ...any) error {
	return &detailError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return &detailError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &detailError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) error {
	return &detailError{kind: ErrForbidden, msg: fmt.Sprintf(format, args...)}
}

func Unauthorizedf(format string, args ...any) error {
	return &detailError{kind: ErrUnauthorized, msg: fmt.Sprintf(format, args...)}
}

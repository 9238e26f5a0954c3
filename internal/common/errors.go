package common

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")

	ErrUpstreamUnavailable  = errors.New("codeforces api unavailable")
	ErrUpstreamAPI          = errors.New("codeforces api returned an error")
	ErrInsufficientProblems = errors.New("not enough eligible problems")
)

// GenerationErrorKind tags why a mashup could not be generated.
type GenerationErrorKind string

const (
	KindUpstreamUnavailable  GenerationErrorKind = "upstream_unavailable"
	KindUpstreamAPI          GenerationErrorKind = "upstream_api"
	KindInsufficientProblems GenerationErrorKind = "insufficient_problems"
)

func (k GenerationErrorKind) sentinel() error {
	switch k {
	case KindUpstreamUnavailable:
		return ErrUpstreamUnavailable
	case KindUpstreamAPI:
		return ErrUpstreamAPI
	case KindInsufficientProblems:
		return ErrInsufficientProblems
	}
	return nil
}

// GenerationError is the failure result of mashup generation. errors.Is matches
// both the wrapped cause and the sentinel for Kind.
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func NewGenerationError(kind GenerationErrorKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "could not generate mashup: " + string(e.Kind)
	}
	return "could not generate mashup: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	return errs
}

// GenerationKindFromError classifies an upstream or selection error. ok is false
// when err does not belong to any generation kind.
func GenerationKindFromError(err error) (kind GenerationErrorKind, ok bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind, true
	}
	switch {
	case errors.Is(err, ErrUpstreamAPI):
		return KindUpstreamAPI, true
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstreamUnavailable, true
	case errors.Is(err, ErrInsufficientProblems):
		return KindInsufficientProblems, true
	}
	return "", false
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	// Every generation failure is a 400; the code field tells them apart.
	if _, ok := GenerationKindFromError(err); ok {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// ErrorCode returns the machine-readable code placed next to the error detail.
func ErrorCode(err error) string {
	if kind, ok := GenerationKindFromError(err); ok {
		return string(kind)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	}
	return "internal_error"
}

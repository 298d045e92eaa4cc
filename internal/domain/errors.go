package domain

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingField signals that a required request field is absent or blank.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField signals that a request field is present but malformed.
	ErrInvalidField = errors.New("invalid field")
	// ErrMissingAsset signals that the template or font is not deployed.
	ErrMissingAsset = errors.New("missing asset")
	// ErrRenderFailure signals a malformed template or a font embedding error.
	ErrRenderFailure = errors.New("certificate rendering failed")
	// ErrMailTransport signals an SMTP authentication or delivery failure.
	ErrMailTransport = errors.New("mail delivery failed")
)

// StatusFor maps an error to the HTTP status returned to the caller.
// Client input problems are 4xx; everything else is a server error.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingField), errors.Is(err, ErrInvalidField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

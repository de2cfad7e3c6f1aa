package handler

import (
	"errors"
	"net/http"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with a status code and a machine readable key.
type HTTPError struct {
	Code    int
	Key     string
	Message string
}

func (e HTTPError) Error() string {
	return e.Key
}

var (
	ErrBadRequest    = HTTPError{Code: http.StatusBadRequest, Key: "bad_request", Message: "The request is malformed."}
	ErrNotFound      = HTTPError{Code: http.StatusNotFound, Key: "not_found", Message: "Not found."}
	ErrInternalError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_error", Message: http.StatusText(http.StatusInternalServerError)}
)

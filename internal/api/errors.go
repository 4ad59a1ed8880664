package api

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is wrapped by every error caused by the request body.
var ErrInvalidRequest = errors.New("invalid_request")

// RequestError names the request field a validation failure refers to.
type RequestError struct {
	Param string
	Msg   string
}

func (e *RequestError) Error() string {
	if e.Param == "" {
		return e.Msg
	}
	return e.Param + ": " + e.Msg
}

func (e *RequestError) Unwrap() error { return ErrInvalidRequest }

func newInvalidRequest(param, format string, args ...any) error {
	return &RequestError{Param: param, Msg: fmt.Sprintf(format, args...)}
}

// paramOf returns the offending field of err, if it names one.
func paramOf(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Param
	}
	return ""
}

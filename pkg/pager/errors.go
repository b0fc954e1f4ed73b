package pager

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned by Load when a newer load started before this
// one could apply its results. The stale response is discarded without
// touching the document or the history.
var ErrSuperseded = errors.New("load superseded by newer request")

// ErrorClass classifies load-cycle failures for logging and metrics.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx response statuses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx response statuses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassParse represents response bodies that are not valid JSON.
	ErrorClassParse ErrorClass = "parse"
)

// RequestError represents a failed request: a non-success HTTP status or
// a transport failure. The error body, if any, is never parsed.
type RequestError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pager %s error: %s: %v", e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("pager %s error (status %d): %s", e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError represents a response body that could not be decoded as the
// expected fragment JSON.
type ParseError struct {
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("pager parse error: %v", e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// classOf extracts the error class from a load-cycle failure.
func classOf(err error) ErrorClass {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Class
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return ErrorClassParse
	}
	return ErrorClassNetwork
}

// classifyStatus categorizes a non-success HTTP status.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

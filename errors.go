package weave

import "fmt"

// BusinessError is a structured (status, message) error a handler or
// middleware can return. The pipeline's terminal adapter converts it to a
// Response with that exact status, unchanged, per the route tree's ("Business").
type BusinessError struct {
	StatusCode int
	Message string
	cause error
}

func (e *BusinessError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error { return e.cause }

// Business builds a BusinessError with the given status and message.
func Business(status int, message string) *BusinessError {
	return &BusinessError{StatusCode: status, Message: message}
}

// Businessf is Business with printf-style formatting.
func Businessf(status int, format string, args ...any) *BusinessError {
	return &BusinessError{StatusCode: status, Message: fmt.Sprintf(format, args...)}
}

// WrapBusiness attaches a cause to a BusinessError for logging, while
// keeping the client-visible Message unchanged.
func WrapBusiness(status int, message string, cause error) *BusinessError {
	return &BusinessError{StatusCode: status, Message: message, cause: cause}
}

// ParamError signals a path/query/body extraction failure. The pipeline maps it to 422 with the held descriptive message.
type ParamError struct {
	Field string
	Message string
}

func (e *ParamError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ParamFailure builds a ParamError for the named field.
func ParamFailure(field, message string) *ParamError {
	return &ParamError{Field: field, Message: message}
}

// bodyTooLarge is returned by boundedBody once the configured maximum body
// size is exceeded; the pipeline maps it to 413. Distinct from a generic
// read error (mapped to 400), mirroring the original Rust implementation's
// split between malformed-body and body-too-large (original_source/
// silent/src/core/req_body.rs).
type bodyTooLarge struct {
	limit int64
}

func (e *bodyTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds maximum size of %d bytes", e.limit)
}

// malformedBody wraps a request body read failure that isn't a size-limit
// trip (a truncated chunked transfer, a client that hung up mid-body, a
// broken transfer-encoding) — the pipeline maps it to 400, distinct from
// bodyTooLarge's 413, mirroring original_source/silent/src/core/req_body.rs's
// split between its two read-failure variants.
type malformedBody struct {
	cause error
}

func (e *malformedBody) Error() string {
	return fmt.Sprintf("malformed request body: %v", e.cause)
}

func (e *malformedBody) Unwrap() error { return e.cause }

// errorToResponse is the pipeline's terminal adapter: if no middleware converted the error into a
// Response, this produces one from its kind.
func errorToResponse(err error) *Response {
	if err == nil {
		return NewResponse(StatusOK)
	}

	switch e := err.(type) {
	case *BusinessError:
		return NewResponse(e.StatusCode).SendString(e.Message)
	case *ParamError:
		return NewResponse(StatusUnprocessableEntity).SendString(e.Error())
	case *bodyTooLarge:
		return NewResponse(StatusRequestEntityTooLarge).SendString(e.Error())
	case *malformedBody:
		return NewResponse(StatusBadRequest).SendString(e.Error())
	case *routingError:
		return NewResponse(e.status).SendString(e.message)
	default:
		return NewResponse(StatusInternalServerError).SendString("internal server error")
	}
}

// routingError represents a 404 (no match) or 405 (method miss) outcome
// of the route tree.
type routingError struct {
	status int
	message string
}

func (e *routingError) Error() string { return e.message }

func errNotFound() *routingError {
	return &routingError{status: StatusNotFound, message: "route not found"}
}

func errMethodNotAllowed() *routingError {
	return &routingError{status: StatusMethodNotAllowed, message: "method not allowed"}
}

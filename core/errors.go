package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	GatewayErrorBadInput         = "GATEWAY_BAD_INPUT"
	GatewayErrorUnauthorized     = "GATEWAY_UNAUTHORIZED"
	GatewayErrorNotFound         = "GATEWAY_NOT_FOUND"
	GatewayErrorConflict         = "GATEWAY_CONFLICT"
	GatewayErrorMethodNotAllowed = "GATEWAY_METHOD_NOT_ALLOWED"
	GatewayErrorUpstreamFailure  = "GATEWAY_UPSTREAM_FAILURE"
	GatewayErrorStorageFailure   = "GATEWAY_STORAGE_FAILURE"
	GatewayErrorNotImplemented   = "GATEWAY_NOT_IMPLEMENTED"
	GatewayErrorInternal         = "GATEWAY_INTERNAL_ERROR"
)

var (
	ErrObjectNotFound  = errors.New("core: object not found")
	ErrAccountNotFound = errors.New("core: account not found")
	ErrAccountExists   = errors.New("core: account already exists")
)

// BadInput reports a client input error rendered as a 400 plain text response.
func BadInput(message string) *goerrors.Error {
	return newGatewayError(message, goerrors.CategoryBadInput, GatewayErrorBadInput)
}

func Unauthorized(message string) *goerrors.Error {
	return newGatewayError(message, goerrors.CategoryAuth, GatewayErrorUnauthorized)
}

func NotFound(message string) *goerrors.Error {
	return newGatewayError(message, goerrors.CategoryNotFound, GatewayErrorNotFound)
}

func Conflict(message string) *goerrors.Error {
	return newGatewayError(message, goerrors.CategoryConflict, GatewayErrorConflict)
}

func MethodNotAllowed(message string) *goerrors.Error {
	return newGatewayError(message, goerrors.CategoryMethodNotAllowed, GatewayErrorMethodNotAllowed)
}

// StorageFailure wraps a blob or account store error. The result is never
// rendered to the caller; the router answers with a generic 500.
func StorageFailure(source error, message string) *goerrors.Error {
	return wrapGatewayError(source, goerrors.CategoryInternal, message, GatewayErrorStorageFailure)
}

func UpstreamFailure(source error, message string) *goerrors.Error {
	return wrapGatewayError(source, goerrors.CategoryExternal, message, GatewayErrorUpstreamFailure)
}

func newGatewayError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureGatewayErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func wrapGatewayError(source error, category goerrors.Category, message string, textCode string) *goerrors.Error {
	if source == nil {
		return newGatewayError(message, category, textCode)
	}
	var richErr *goerrors.Error
	if goerrors.As(source, &richErr) {
		// already classified; keep its category and status
		return ensureGatewayErrorEnvelope(richErr)
	}
	return ensureGatewayErrorEnvelope(
		goerrors.Wrap(source, category, message).
			WithTextCode(textCode),
	)
}

// ClientError returns the rich error when err carries a 4xx status, meaning a
// handler classified it and its message is safe to show to the caller.
func ClientError(err error) (*goerrors.Error, bool) {
	if err == nil {
		return nil, false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return nil, false
	}
	if richErr.Code < http.StatusBadRequest || richErr.Code >= http.StatusInternalServerError {
		return nil, false
	}
	return richErr, true
}

func gatewayErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureGatewayErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrObjectNotFound), errors.Is(err, ErrAccountNotFound):
		return wrapGatewayError(err, goerrors.CategoryNotFound, err.Error(), GatewayErrorNotFound)
	case errors.Is(err, ErrAccountExists):
		return wrapGatewayError(err, goerrors.CategoryConflict, err.Error(), GatewayErrorConflict)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return wrapGatewayError(err, goerrors.CategoryBadInput, err.Error(), GatewayErrorBadInput)
	case strings.Contains(msg, "context deadline exceeded"), strings.Contains(msg, "connection refused"):
		return wrapGatewayError(err, goerrors.CategoryExternal, err.Error(), GatewayErrorUpstreamFailure)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureGatewayErrorEnvelope(mapped)
}

func ensureGatewayErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = gatewayHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultGatewayTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultGatewayTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return GatewayErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return GatewayErrorUnauthorized
	case goerrors.CategoryNotFound:
		return GatewayErrorNotFound
	case goerrors.CategoryConflict:
		return GatewayErrorConflict
	case goerrors.CategoryMethodNotAllowed:
		return GatewayErrorMethodNotAllowed
	case goerrors.CategoryExternal:
		return GatewayErrorUpstreamFailure
	default:
		return GatewayErrorInternal
	}
}

func gatewayHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package transport

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-stepgate/core"
)

// Requests are composed by the gateway itself, so a malformed one is an
// internal fault rather than caller input. Only upstream failures map to 502.
func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	if source == nil {
		return transportError(message, category, code, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportTextCode(category goerrors.Category) string {
	if category == goerrors.CategoryExternal {
		return core.GatewayErrorUpstreamFailure
	}
	return core.GatewayErrorInternal
}

package api

import (
	"net/http"

	"github.com/goliatone/go-stepgate/core"
)

const HealthServicePath = "/test/v1/"

const PongMessage = "Pong"

// NewHealthService answers GET ping. Every other request produces no
// response, which the router reports as not implemented.
func NewHealthService(deps Dependencies) (*Service, error) {
	return NewService(HealthServicePath, nil, []Route{
		{Method: http.MethodGet, Action: "ping", Access: AccessPublic, Handle: ping},
	},
		WithUnmatched(func(Call) (*core.Response, error) { return nil, nil }),
		WithServiceLogger(deps.Logger),
	)
}

func ping(Call) (*core.Response, error) {
	return core.Text(http.StatusOK, PongMessage), nil
}

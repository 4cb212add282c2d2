package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestClientError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		ok     bool
		status int
	}{
		{name: "bad input", err: BadInput("Invalid JSON"), ok: true, status: http.StatusBadRequest},
		{name: "unauthorized", err: Unauthorized("Invalid token"), ok: true, status: http.StatusUnauthorized},
		{name: "not found", err: NotFound("Not Found"), ok: true, status: http.StatusNotFound},
		{name: "conflict", err: Conflict("User already exists"), ok: true, status: http.StatusConflict},
		{name: "method", err: MethodNotAllowed("Method Not Allowed"), ok: true, status: http.StatusMethodNotAllowed},
		{name: "wrapped", err: fmt.Errorf("handler: %w", BadInput("Missing code")), ok: true, status: http.StatusBadRequest},
		{name: "storage", err: StorageFailure(errors.New("io"), "put"), ok: false},
		{name: "upstream", err: UpstreamFailure(errors.New("io"), "call"), ok: false},
		{name: "plain", err: errors.New("plain"), ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rich, ok := ClientError(tc.err)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && rich.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rich.Code)
			}
		})
	}
}

func TestGatewayErrorMapper(t *testing.T) {
	mapped := gatewayErrorMapper(ErrObjectNotFound)
	if mapped == nil || mapped.TextCode != GatewayErrorNotFound || mapped.Code != http.StatusNotFound {
		t.Fatalf("unexpected mapping %#v", mapped)
	}
	mapped = gatewayErrorMapper(ErrAccountExists)
	if mapped.Category != goerrors.CategoryConflict {
		t.Fatalf("expected conflict category, got %s", mapped.Category)
	}
	mapped = gatewayErrorMapper(UpstreamFailure(errors.New("timeout"), "openai"))
	if mapped.Code != http.StatusBadGateway || mapped.TextCode != GatewayErrorUpstreamFailure {
		t.Fatalf("unexpected upstream mapping %#v", mapped)
	}
	if gatewayErrorMapper(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

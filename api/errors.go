package api

import (
	"context"
	"net/http"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-stepgate/core"
)

func apiDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.GatewayErrorInternal)
}

// failWith passes client errors through and answers everything else with a
// 500 carrying message. The cause is only logged.
func failWith(call Call, logger core.Logger, err error, message string) (*core.Response, error) {
	if _, ok := core.ClientError(err); ok {
		return nil, err
	}
	fields := map[string]any{"error": err.Error()}
	if call.Request != nil && call.Request.URL != nil {
		fields["path"] = call.Request.URL.Path
	}
	core.LogError(call.Context(), logger, "service operation failed", fields)
	return core.Text(http.StatusInternalServerError, message), nil
}

// rootMessage is the innermost error text, the part worth echoing to callers.
func rootMessage(err error) string {
	if root := goerrors.RootCause(err); root != nil {
		return root.Error()
	}
	return err.Error()
}

func execute[M any](ctx context.Context, cmd gocmd.Commander[M], msg M) error {
	if cmd == nil {
		return apiDependencyError("api: command is not configured")
	}
	return cmd.Execute(ctx, msg)
}

// executeWithResult runs cmd with a result collector attached and returns
// whatever the command stored.
func executeWithResult[M any, R any](ctx context.Context, cmd gocmd.Commander[M], msg M) (R, error) {
	var zero R
	collector := gocmd.NewResult[R]()
	if err := execute(gocmd.ContextWithResult(ctx, collector), cmd, msg); err != nil {
		return zero, err
	}
	value, _ := collector.Load()
	return value, nil
}

func ask[M any, R any](ctx context.Context, q gocmd.Querier[M, R], msg M) (R, error) {
	if q == nil {
		var zero R
		return zero, apiDependencyError("api: query is not configured")
	}
	return q.Query(ctx, msg)
}

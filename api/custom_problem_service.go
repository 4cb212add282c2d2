package api

import (
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-stepgate/command"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
	"github.com/goliatone/go-stepgate/query"
)

const CustomProblemServicePath = "/customProblems/v1/"

const (
	InvalidPayloadFieldsMessage = "Invalid payload fields"
	UpdatedMessage              = "Updated"
	LoadProblemsFailedMessage   = "Failed to load problems"
	SaveProblemFailedMessage    = "Failed to save problem"
	UpdateProblemFailedMessage  = "Failed to update problem"
	DeleteProblemFailedMessage  = "Failed to delete problem"
)

const (
	variantNameOnly = "nameOnly"
	variantInfo     = "info"
)

type customProblemName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type customProblemHandlers struct {
	commands Commands
	queries  Queries
	body     bodyDecoder
	logger   core.Logger
}

// NewCustomProblemService manages user authored exercises. The first
// sub-path segment is either "save" or a problem id, optionally followed by
// a projection ("nameOnly" or "info").
func NewCustomProblemService(deps Dependencies) (*Service, error) {
	h := &customProblemHandlers{
		commands: deps.Commands,
		queries:  deps.Queries,
		body:     newBodyDecoder(deps.MaxBodyBytes),
		logger:   deps.Logger,
	}
	return NewService(CustomProblemServicePath, deps.Authenticator, []Route{
		{Method: http.MethodGet, Action: "", Handle: h.list},
		{Method: http.MethodPost, Action: "save", Handle: h.save},
		{Method: http.MethodGet, Action: Wildcard, Handle: h.load},
		{Method: http.MethodPut, Action: Wildcard, Handle: h.update},
		{Method: http.MethodDelete, Action: Wildcard, Handle: h.delete},
	}, WithAuthenticateFirst(), WithServiceLogger(deps.Logger))
}

func (h *customProblemHandlers) list(call Call) (*core.Response, error) {
	summaries, err := ask(call.Context(), h.queries.ListCustomProblems, query.ListCustomProblemsMessage{Owner: call.Owner()})
	if err != nil {
		return failWith(call, h.logger, err, LoadProblemsFailedMessage)
	}
	return jsonResponse(summaries)
}

func (h *customProblemHandlers) save(call Call) (*core.Response, error) {
	var body struct {
		ID          json.RawMessage `json:"id"`
		Name        json.RawMessage `json:"name"`
		Description json.RawMessage `json:"description"`
		DefaultText json.RawMessage `json:"defaultText"`
		Tests       json.RawMessage `json:"tests"`
	}
	if err := h.body.decode(call.Request, &body); err != nil {
		return nil, err
	}
	problem := documents.CustomProblem{}
	problem.ID, _ = jsonString(body.ID)
	fields := []struct {
		raw json.RawMessage
		dst *string
	}{
		{body.Name, &problem.Name},
		{body.Description, &problem.Description},
		{body.DefaultText, &problem.DefaultText},
		{body.Tests, &problem.Tests},
	}
	for _, field := range fields {
		value, ok := jsonString(field.raw)
		if !ok {
			return nil, core.BadInput(InvalidPayloadFieldsMessage)
		}
		*field.dst = value
	}

	id, err := executeWithResult[command.SaveCustomProblemMessage, string](call.Context(), h.commands.SaveCustomProblem, command.SaveCustomProblemMessage{
		Owner:   call.Owner(),
		Problem: problem,
	})
	if err != nil {
		return failWith(call, h.logger, err, SaveProblemFailedMessage)
	}
	return core.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *customProblemHandlers) load(call Call) (*core.Response, error) {
	problem, err := ask(call.Context(), h.queries.LoadCustomProblem, query.LoadCustomProblemMessage{
		Owner: call.Owner(),
		ID:    call.Action(),
	})
	if err != nil {
		return nil, err
	}
	switch call.Segment(1) {
	case "":
		return jsonResponse(problem)
	case variantNameOnly:
		return jsonResponse(customProblemName{ID: problem.ID, Name: problem.Name})
	case variantInfo:
		return jsonResponse(documents.CustomProblemSummary{ID: problem.ID, Name: problem.Name, Description: problem.Description})
	default:
		return nil, core.NotFound(NotFoundMessage)
	}
}

// update keeps the stored value of every field the body leaves out or sets
// to null.
func (h *customProblemHandlers) update(call Call) (*core.Response, error) {
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		DefaultText *string `json:"defaultText"`
		Tests       *string `json:"tests"`
	}
	if err := h.body.decode(call.Request, &body); err != nil {
		return nil, err
	}
	err := execute(call.Context(), h.commands.UpdateCustomProblem, command.UpdateCustomProblemMessage{
		Owner: call.Owner(),
		ID:    call.Action(),
		Patch: command.CustomProblemPatch{
			Name:        body.Name,
			Description: body.Description,
			DefaultText: body.DefaultText,
			Tests:       body.Tests,
		},
	})
	if err != nil {
		return failWith(call, h.logger, err, UpdateProblemFailedMessage)
	}
	return core.Text(http.StatusOK, UpdatedMessage), nil
}

func (h *customProblemHandlers) delete(call Call) (*core.Response, error) {
	err := execute(call.Context(), h.commands.DeleteCustomProblem, command.DeleteCustomProblemMessage{
		Owner: call.Owner(),
		ID:    call.Action(),
	})
	if err != nil {
		return failWith(call, h.logger, err, DeleteProblemFailedMessage)
	}
	return core.Empty(http.StatusNoContent), nil
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-stepgate/command"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
	"github.com/goliatone/go-stepgate/query"
)

const (
	AbstractionServicePath      = "/abstraction/v1/"
	AbstractionStepsServicePath = "/abstractionInbetween/v1/"
)

const (
	MissingProblemIDParamMessage      = "Missing problemId"
	MissingAbstractionIDMessage       = "Missing abstractionId"
	InvalidAbstractionMessage         = "Missing or invalid `abstraction`"
	AbstractionSavedMessage           = "Abstraction saved"
	DeleteAbstractionFailedPrefix     = "Failed to delete abstraction: "
	DeleteAllAbstractionsFailedPrefix = "Failed to delete all abstractions: "
)

type abstractionHandlers struct {
	commands Commands
	queries  Queries
	body     bodyDecoder
	logger   core.Logger
}

func newAbstractionHandlers(deps Dependencies) *abstractionHandlers {
	return &abstractionHandlers{
		commands: deps.Commands,
		queries:  deps.Queries,
		body:     newBodyDecoder(deps.MaxBodyBytes),
		logger:   deps.Logger,
	}
}

// NewAbstractionService keeps the top level abstraction list of a problem,
// addressed by the id query parameter.
func NewAbstractionService(deps Dependencies) (*Service, error) {
	h := newAbstractionHandlers(deps)
	return NewService(AbstractionServicePath, deps.Authenticator, []Route{
		{Method: http.MethodPost, Action: "saveAbstraction", Handle: h.saveAbstraction},
		{Method: http.MethodGet, Action: "loadAbstraction", Handle: h.loadAbstraction},
	}, WithAuthenticateFirst(), WithServiceLogger(deps.Logger))
}

// NewAbstractionStepsService keeps the intermediate step sets between
// abstraction levels. Every request needs problemId, unknown routes included.
func NewAbstractionStepsService(deps Dependencies) (*Service, error) {
	h := newAbstractionHandlers(deps)
	return NewService(AbstractionStepsServicePath, deps.Authenticator, []Route{
		{Method: http.MethodPost, Action: "saveAbstraction", Handle: h.saveSteps},
		{Method: http.MethodGet, Action: "loadAbstraction", Handle: h.loadSteps},
		{Method: http.MethodDelete, Action: "deleteAbstraction", Handle: h.deleteSteps},
		{Method: http.MethodDelete, Action: "deleteAllAbstractions", Handle: h.deleteAllSteps},
	},
		WithAuthenticateFirst(),
		WithPrecondition(requireQuery("problemId", MissingProblemIDParamMessage)),
		WithServiceLogger(deps.Logger),
	)
}

func requireQuery(name string, message string) func(Call) error {
	return func(call Call) error {
		if call.Query(name) == "" {
			return core.BadInput(message)
		}
		return nil
	}
}

func (h *abstractionHandlers) saveAbstraction(call Call) (*core.Response, error) {
	problemID := call.Query("id")
	if problemID == "" {
		return nil, core.BadInput(MissingProblemIDParamMessage)
	}
	var body struct {
		Abstraction json.RawMessage `json:"abstraction"`
	}
	if err := h.body.decode(call.Request, &body); err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(body.Abstraction, &items); err != nil || items == nil {
		return nil, core.BadInput(InvalidAbstractionMessage)
	}
	err := execute(call.Context(), h.commands.SaveAbstraction, command.SaveAbstractionMessage{
		Owner:       call.Owner(),
		ProblemID:   problemID,
		Abstraction: body.Abstraction,
	})
	if err != nil {
		return nil, err
	}
	return core.Text(http.StatusCreated, AbstractionSavedMessage), nil
}

func (h *abstractionHandlers) loadAbstraction(call Call) (*core.Response, error) {
	problemID := call.Query("id")
	if problemID == "" {
		return nil, core.BadInput(MissingProblemIDParamMessage)
	}
	body, err := ask(call.Context(), h.queries.LoadAbstraction, query.LoadAbstractionMessage{
		Owner:     call.Owner(),
		ProblemID: problemID,
	})
	if err != nil {
		return nil, err
	}
	return core.RawJSON(http.StatusOK, body), nil
}

func (h *abstractionHandlers) saveSteps(call Call) (*core.Response, error) {
	abstractionID := call.Query("abstractionId")
	if abstractionID == "" {
		return nil, core.BadInput(MissingAbstractionIDMessage)
	}
	var steps documents.AbstractionSteps
	if err := h.body.decode(call.Request, &steps); err != nil {
		return nil, err
	}
	err := execute(call.Context(), h.commands.SaveAbstractionSteps, command.SaveAbstractionStepsMessage{
		Owner:         call.Owner(),
		ProblemID:     call.Query("problemId"),
		AbstractionID: abstractionID,
		Steps:         steps,
	})
	if err != nil {
		return nil, err
	}
	return core.Empty(http.StatusCreated), nil
}

// loadSteps answers 204 when the abstraction has no saved steps.
func (h *abstractionHandlers) loadSteps(call Call) (*core.Response, error) {
	abstractionID := call.Query("abstractionId")
	if abstractionID == "" {
		return nil, core.BadInput(MissingAbstractionIDMessage)
	}
	doc, err := ask(call.Context(), h.queries.LoadAbstractionSteps, query.LoadAbstractionStepsMessage{
		Owner:         call.Owner(),
		ProblemID:     call.Query("problemId"),
		AbstractionID: abstractionID,
	})
	if err != nil {
		return nil, err
	}
	if !doc.Found {
		return core.Empty(http.StatusNoContent), nil
	}
	return core.RawJSON(http.StatusOK, doc.Body), nil
}

func (h *abstractionHandlers) deleteSteps(call Call) (*core.Response, error) {
	abstractionID := call.Query("abstractionId")
	if abstractionID == "" {
		return nil, core.BadInput(MissingAbstractionIDMessage)
	}
	err := execute(call.Context(), h.commands.DeleteAbstractionSteps, command.DeleteAbstractionStepsMessage{
		Owner:         call.Owner(),
		ProblemID:     call.Query("problemId"),
		AbstractionID: abstractionID,
	})
	if err != nil {
		return failWith(call, h.logger, err, DeleteAbstractionFailedPrefix+rootMessage(err))
	}
	return core.Empty(http.StatusNoContent), nil
}

func (h *abstractionHandlers) deleteAllSteps(call Call) (*core.Response, error) {
	err := execute(call.Context(), h.commands.DeleteAllAbstractionSteps, command.DeleteAllAbstractionStepsMessage{
		Owner:     call.Owner(),
		ProblemID: call.Query("problemId"),
	})
	if err != nil {
		return failWith(call, h.logger, err, DeleteAllAbstractionsFailedPrefix+rootMessage(err))
	}
	return core.Empty(http.StatusNoContent), nil
}

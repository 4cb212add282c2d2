package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goliatone/go-stepgate/command"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/query"
)

const (
	ProblemFilesServicePath = "/problem/v1/"
	StepTreeServicePath     = "/problem/v2/"
)

const (
	MissingProblemIDMessage = "Missing problem ID"
	MissingNodeIDMessage    = "Missing nodeId"
	ProblemSavedMessage     = "Problem saved"
	StepTreeSavedMessage    = "Step tree saved"
)

type problemHandlers struct {
	commands Commands
	queries  Queries
	body     bodyDecoder
}

func newProblemHandlers(deps Dependencies) *problemHandlers {
	return &problemHandlers{
		commands: deps.Commands,
		queries:  deps.Queries,
		body:     newBodyDecoder(deps.MaxBodyBytes),
	}
}

// NewProblemFilesService stores explorer trees and versioned file contents.
// Authentication is checked per route, so unknown routes answer 404 to
// anonymous callers.
func NewProblemFilesService(deps Dependencies) (*Service, error) {
	h := newProblemHandlers(deps)
	return NewService(ProblemFilesServicePath, deps.Authenticator, []Route{
		{Method: http.MethodPost, Action: "save", Handle: h.saveProblem},
		{Method: http.MethodGet, Action: "load", Handle: h.loadProblem},
		{Method: http.MethodGet, Action: "history", Handle: h.fileHistory},
	}, WithServiceLogger(deps.Logger))
}

// NewStepTreeService stores one step tree per problem.
func NewStepTreeService(deps Dependencies) (*Service, error) {
	h := newProblemHandlers(deps)
	return NewService(StepTreeServicePath, deps.Authenticator, []Route{
		{Method: http.MethodPost, Action: "saveStepTree", Handle: h.saveStepTree},
		{Method: http.MethodGet, Action: "loadStepTree", Handle: h.loadStepTree},
	}, WithAuthenticateFirst(), WithServiceLogger(deps.Logger))
}

func (h *problemHandlers) saveProblem(call Call) (*core.Response, error) {
	var body struct {
		ProblemID    string            `json:"problemId"`
		Tree         json.RawMessage   `json:"tree"`
		CodeMap      map[string]string `json:"codeMap"`
		DeletedFiles []string          `json:"deletedFiles"`
	}
	if err := h.body.decode(call.Request, &body); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body.ProblemID) == "" {
		return nil, core.BadInput(MissingProblemIDMessage)
	}
	err := execute(call.Context(), h.commands.SaveProblem, command.SaveProblemMessage{
		Owner:        call.Owner(),
		ProblemID:    body.ProblemID,
		Tree:         body.Tree,
		CodeMap:      body.CodeMap,
		DeletedFiles: body.DeletedFiles,
	})
	if err != nil {
		return nil, err
	}
	return core.Text(http.StatusCreated, ProblemSavedMessage), nil
}

func (h *problemHandlers) loadProblem(call Call) (*core.Response, error) {
	problemID := call.Query("id")
	if problemID == "" {
		return nil, core.BadInput(MissingProblemIDMessage)
	}
	snapshot, err := ask(call.Context(), h.queries.LoadProblem, query.LoadProblemMessage{
		Owner:     call.Owner(),
		ProblemID: problemID,
	})
	if err != nil {
		return nil, err
	}
	return jsonResponse(snapshot)
}

func (h *problemHandlers) fileHistory(call Call) (*core.Response, error) {
	problemID := call.Query("id")
	if problemID == "" {
		return nil, core.BadInput(MissingProblemIDMessage)
	}
	nodeID := call.Query("nodeId")
	if nodeID == "" {
		return nil, core.BadInput(MissingNodeIDMessage)
	}
	history, err := ask(call.Context(), h.queries.FileHistory, query.FileHistoryMessage{
		Owner:     call.Owner(),
		ProblemID: problemID,
		NodeID:    nodeID,
	})
	if err != nil {
		return nil, err
	}
	return jsonResponse(history)
}

func (h *problemHandlers) saveStepTree(call Call) (*core.Response, error) {
	var body struct {
		ProblemID string          `json:"problemId"`
		StepTree  json.RawMessage `json:"stepTree"`
	}
	if err := h.body.decode(call.Request, &body); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body.ProblemID) == "" {
		return nil, core.BadInput(MissingProblemIDMessage)
	}
	err := execute(call.Context(), h.commands.SaveStepTree, command.SaveStepTreeMessage{
		Owner:     call.Owner(),
		ProblemID: body.ProblemID,
		StepTree:  body.StepTree,
	})
	if err != nil {
		return nil, err
	}
	return core.Text(http.StatusCreated, StepTreeSavedMessage), nil
}

// loadStepTree answers the JSON literal null when nothing is stored.
func (h *problemHandlers) loadStepTree(call Call) (*core.Response, error) {
	problemID := call.Query("id")
	if problemID == "" {
		return nil, core.BadInput(MissingProblemIDMessage)
	}
	doc, err := ask(call.Context(), h.queries.LoadStepTree, query.LoadStepTreeMessage{
		Owner:     call.Owner(),
		ProblemID: problemID,
	})
	if err != nil {
		return nil, err
	}
	if !doc.Found {
		return core.RawJSON(http.StatusOK, []byte("null")), nil
	}
	return core.RawJSON(http.StatusOK, doc.Body), nil
}

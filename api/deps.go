package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-stepgate/command"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
	"github.com/goliatone/go-stepgate/llm"
	"github.com/goliatone/go-stepgate/providers/github"
	"github.com/goliatone/go-stepgate/query"
)

type Commands struct {
	SaveStepTree              gocmd.Commander[command.SaveStepTreeMessage]
	SaveAbstraction           gocmd.Commander[command.SaveAbstractionMessage]
	SaveAbstractionSteps      gocmd.Commander[command.SaveAbstractionStepsMessage]
	DeleteAbstractionSteps    gocmd.Commander[command.DeleteAbstractionStepsMessage]
	DeleteAllAbstractionSteps gocmd.Commander[command.DeleteAllAbstractionStepsMessage]
	SaveReview                gocmd.Commander[command.SaveReviewMessage]
	SaveCustomProblem         gocmd.Commander[command.SaveCustomProblemMessage]
	UpdateCustomProblem       gocmd.Commander[command.UpdateCustomProblemMessage]
	DeleteCustomProblem       gocmd.Commander[command.DeleteCustomProblemMessage]
	SaveProblem               gocmd.Commander[command.SaveProblemMessage]
	Signup                    gocmd.Commander[command.SignupMessage]
}

type Queries struct {
	LoadStepTree            gocmd.Querier[query.LoadStepTreeMessage, query.StoredDocument]
	LoadAbstraction         gocmd.Querier[query.LoadAbstractionMessage, json.RawMessage]
	LoadAbstractionSteps    gocmd.Querier[query.LoadAbstractionStepsMessage, query.StoredDocument]
	LoadReview              gocmd.Querier[query.LoadReviewMessage, documents.Review]
	ListReviews             gocmd.Querier[query.ListReviewsMessage, []documents.OwnedReview]
	LoadCustomProblem       gocmd.Querier[query.LoadCustomProblemMessage, documents.CustomProblem]
	ListCustomProblems      gocmd.Querier[query.ListCustomProblemsMessage, []documents.CustomProblemSummary]
	LoadProblem             gocmd.Querier[query.LoadProblemMessage, documents.ProblemSnapshot]
	FileHistory             gocmd.Querier[query.FileHistoryMessage, []string]
	AuthenticateCredentials gocmd.Querier[query.AuthenticateCredentialsMessage, core.Account]
}

// NewCommands builds every command over the document store and the account
// store.
func NewCommands(store command.DocumentWriter, accounts core.AccountStore, now func() time.Time) Commands {
	return Commands{
		SaveStepTree:              command.NewSaveStepTreeCommand(store),
		SaveAbstraction:           command.NewSaveAbstractionCommand(store),
		SaveAbstractionSteps:      command.NewSaveAbstractionStepsCommand(store),
		DeleteAbstractionSteps:    command.NewDeleteAbstractionStepsCommand(store),
		DeleteAllAbstractionSteps: command.NewDeleteAllAbstractionStepsCommand(store),
		SaveReview:                command.NewSaveReviewCommand(store),
		SaveCustomProblem:         command.NewSaveCustomProblemCommand(store),
		UpdateCustomProblem:       command.NewUpdateCustomProblemCommand(store),
		DeleteCustomProblem:       command.NewDeleteCustomProblemCommand(store),
		SaveProblem:               command.NewSaveProblemCommand(store),
		Signup:                    command.NewSignupCommand(accounts, now),
	}
}

func NewQueries(reader query.DocumentReader, accounts core.AccountStore) Queries {
	return Queries{
		LoadStepTree:            query.NewLoadStepTreeQuery(reader),
		LoadAbstraction:         query.NewLoadAbstractionQuery(reader),
		LoadAbstractionSteps:    query.NewLoadAbstractionStepsQuery(reader),
		LoadReview:              query.NewLoadReviewQuery(reader),
		ListReviews:             query.NewListReviewsQuery(reader),
		LoadCustomProblem:       query.NewLoadCustomProblemQuery(reader),
		ListCustomProblems:      query.NewListCustomProblemsQuery(reader),
		LoadProblem:             query.NewLoadProblemQuery(reader),
		FileHistory:             query.NewFileHistoryQuery(reader),
		AuthenticateCredentials: query.NewAuthenticateCredentialsQuery(accounts),
	}
}

type TokenIssuer interface {
	IssueFor(username string, email string) (string, error)
}

type GitHubClient interface {
	AuthorizeURL() string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchUser(ctx context.Context, accessToken string) (github.User, error)
}

type CompletionProxy interface {
	Complete(ctx context.Context, route llm.Route, body []byte) (*core.Response, error)
}

// Dependencies is everything NewServices wires into the route tables.
type Dependencies struct {
	Commands      Commands
	Queries       Queries
	Authenticator Authenticator
	Tokens        TokenIssuer
	GitHub        GitHubClient
	Completions   CompletionProxy
	Routes        []llm.Route
	Logger        core.Logger
	MaxBodyBytes  int64
}

// NewServices builds one service per prefix. Completion routes are only
// mounted when a proxy is configured.
func NewServices(deps Dependencies) ([]core.Service, error) {
	if deps.Authenticator == nil {
		return nil, fmt.Errorf("api: authenticator is required")
	}
	builders := []func(Dependencies) (*Service, error){
		NewAuthService,
		NewProblemFilesService,
		NewStepTreeService,
		NewAbstractionService,
		NewAbstractionStepsService,
		NewReviewService,
		NewCustomProblemService,
		NewHealthService,
	}
	services := make([]core.Service, 0, len(builders)+len(deps.Routes))
	for _, build := range builders {
		service, err := build(deps)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	if deps.Completions != nil {
		routes := deps.Routes
		if len(routes) == 0 {
			routes = llm.DefaultRoutes()
		}
		for _, route := range routes {
			service, err := NewCompletionService(route, deps.Completions, WithCompletionBodyLimit(deps.MaxBodyBytes))
			if err != nil {
				return nil, err
			}
			services = append(services, service)
		}
	}
	return services, nil
}

func jsonResponse(value any) (*core.Response, error) {
	return core.JSON(http.StatusOK, value)
}

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-stepgate/auth"
	"github.com/goliatone/go-stepgate/command"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/providers/github"
	"github.com/goliatone/go-stepgate/query"
)

const AuthServicePath = "/auth/v1/"

const (
	MissingSignupFieldsMessage = "Missing username, password, or email"
	InvalidUsernameMessage     = "Username must not contain /"
	UserCreatedMessage         = "User created"
	MissingCodeMessage         = "Missing code"
	TokenExchangeFailedMessage = "Failed to get token"
	GitHubUserFailedMessage    = "Failed to fetch GitHub user"
)

type tokenReply struct {
	Token string `json:"token"`
}

type authHandlers struct {
	commands Commands
	queries  Queries
	tokens   TokenIssuer
	github   GitHubClient
	body     bodyDecoder
	logger   core.Logger
}

// NewAuthService serves signup, password login and the GitHub OAuth flow.
// Actions match the whole sub-path, so "github/login/" is unknown.
func NewAuthService(deps Dependencies) (*Service, error) {
	h := &authHandlers{
		commands: deps.Commands,
		queries:  deps.Queries,
		tokens:   deps.Tokens,
		github:   deps.GitHub,
		body:     newBodyDecoder(deps.MaxBodyBytes),
		logger:   deps.Logger,
	}
	routes := []Route{
		{Method: http.MethodPost, Action: "signup", Access: AccessPublic, Handle: h.signup},
		{Method: http.MethodPost, Action: "login", Access: AccessPublic, Handle: h.login},
	}
	if h.github != nil {
		routes = append(routes,
			Route{Method: http.MethodGet, Action: "github/login", Access: AccessPublic, Handle: h.githubLogin},
			Route{Method: http.MethodGet, Action: "github/callback", Access: AccessPublic, Handle: h.githubCallback},
		)
	}
	return NewService(AuthServicePath, deps.Authenticator, routes,
		WithWholeSubPathActions(),
		WithServiceLogger(deps.Logger),
	)
}

func (h *authHandlers) signup(call Call) (*core.Response, error) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := h.body.decode(call.Request, &body); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body.Username) == "" || body.Password == "" || strings.TrimSpace(body.Email) == "" {
		return nil, core.BadInput(MissingSignupFieldsMessage)
	}
	if !auth.ValidUsername(body.Username) {
		return nil, core.BadInput(InvalidUsernameMessage)
	}
	err := execute(call.Context(), h.commands.Signup, command.SignupMessage{
		Username: body.Username,
		Password: body.Password,
		Email:    body.Email,
	})
	if err != nil {
		return nil, err
	}
	return core.Text(http.StatusCreated, UserCreatedMessage), nil
}

func (h *authHandlers) login(call Call) (*core.Response, error) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := h.body.decode(call.Request, &body); err != nil {
		return nil, err
	}
	account, err := ask(call.Context(), h.queries.AuthenticateCredentials, query.AuthenticateCredentialsMessage{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		return nil, err
	}
	return h.issue(account.Username, account.Email)
}

func (h *authHandlers) githubLogin(Call) (*core.Response, error) {
	return core.Redirect(h.github.AuthorizeURL(), http.StatusFound), nil
}

func (h *authHandlers) githubCallback(call Call) (*core.Response, error) {
	code := call.Query("code")
	if code == "" {
		return nil, core.BadInput(MissingCodeMessage)
	}
	accessToken, err := h.github.ExchangeCode(call.Context(), code)
	if errors.Is(err, github.ErrMissingAccessToken) {
		return nil, core.Unauthorized(TokenExchangeFailedMessage)
	}
	if err != nil {
		return nil, core.UpstreamFailure(err, "api: github token exchange")
	}
	user, err := h.github.FetchUser(call.Context(), accessToken)
	if errors.Is(err, github.ErrMissingLogin) {
		return nil, core.Unauthorized(GitHubUserFailedMessage)
	}
	if err != nil {
		return nil, core.UpstreamFailure(err, "api: github user lookup")
	}
	core.LogInfo(call.Context(), h.logger, "github sign in", map[string]any{"login": user.Login})
	return h.issue(user.Login, user.EmailOrEmpty())
}

func (h *authHandlers) issue(username string, email string) (*core.Response, error) {
	if h.tokens == nil {
		return nil, apiDependencyError("api: token issuer is not configured")
	}
	token, err := h.tokens.IssueFor(username, email)
	if err != nil {
		return nil, err
	}
	return jsonResponse(tokenReply{Token: token})
}

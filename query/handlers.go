package query

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/goliatone/go-stepgate/auth"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
)

// InvalidCredentialsMessage is returned for unknown users and wrong
// passwords alike.
const InvalidCredentialsMessage = "Invalid username or password"

type DocumentReader interface {
	LoadStepTree(ctx context.Context, owner string, problemID string) (json.RawMessage, bool, error)
	LoadAbstraction(ctx context.Context, owner string, problemID string) (json.RawMessage, error)
	LoadAbstractionSteps(ctx context.Context, owner string, problemID string, abstractionID string) (json.RawMessage, bool, error)
	LoadReview(ctx context.Context, owner string) (documents.Review, error)
	ListReviews(ctx context.Context) ([]documents.OwnedReview, error)
	LoadCustomProblem(ctx context.Context, owner string, id string) (documents.CustomProblem, bool, error)
	ListCustomProblems(ctx context.Context, owner string) ([]documents.CustomProblemSummary, error)
	LoadProblem(ctx context.Context, owner string, problemID string) (documents.ProblemSnapshot, error)
	FileHistory(ctx context.Context, owner string, problemID string, nodeID string) ([]string, error)
}

// StoredDocument is a raw JSON body; Found is false when nothing is stored.
type StoredDocument struct {
	Body  json.RawMessage
	Found bool
}

type LoadStepTreeQuery struct {
	reader DocumentReader
}

func NewLoadStepTreeQuery(reader DocumentReader) *LoadStepTreeQuery {
	return &LoadStepTreeQuery{reader: reader}
}

func (q *LoadStepTreeQuery) Query(ctx context.Context, msg LoadStepTreeMessage) (StoredDocument, error) {
	if q == nil || q.reader == nil {
		return StoredDocument{}, queryDependencyError("query: step tree reader is required")
	}
	if err := msg.Validate(); err != nil {
		return StoredDocument{}, err
	}
	body, found, err := q.reader.LoadStepTree(ctx, msg.Owner, msg.ProblemID)
	if err != nil {
		return StoredDocument{}, core.StorageFailure(err, "query: load step tree")
	}
	return StoredDocument{Body: body, Found: found}, nil
}

type LoadAbstractionQuery struct {
	reader DocumentReader
}

func NewLoadAbstractionQuery(reader DocumentReader) *LoadAbstractionQuery {
	return &LoadAbstractionQuery{reader: reader}
}

func (q *LoadAbstractionQuery) Query(ctx context.Context, msg LoadAbstractionMessage) (json.RawMessage, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: abstraction reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	body, err := q.reader.LoadAbstraction(ctx, msg.Owner, msg.ProblemID)
	if err != nil {
		return nil, core.StorageFailure(err, "query: load abstraction")
	}
	return body, nil
}

type LoadAbstractionStepsQuery struct {
	reader DocumentReader
}

func NewLoadAbstractionStepsQuery(reader DocumentReader) *LoadAbstractionStepsQuery {
	return &LoadAbstractionStepsQuery{reader: reader}
}

func (q *LoadAbstractionStepsQuery) Query(ctx context.Context, msg LoadAbstractionStepsMessage) (StoredDocument, error) {
	if q == nil || q.reader == nil {
		return StoredDocument{}, queryDependencyError("query: abstraction steps reader is required")
	}
	if err := msg.Validate(); err != nil {
		return StoredDocument{}, err
	}
	body, found, err := q.reader.LoadAbstractionSteps(ctx, msg.Owner, msg.ProblemID, msg.AbstractionID)
	if err != nil {
		return StoredDocument{}, core.StorageFailure(err, "query: load abstraction steps")
	}
	return StoredDocument{Body: body, Found: found}, nil
}

type LoadReviewQuery struct {
	reader DocumentReader
}

func NewLoadReviewQuery(reader DocumentReader) *LoadReviewQuery {
	return &LoadReviewQuery{reader: reader}
}

func (q *LoadReviewQuery) Query(ctx context.Context, msg LoadReviewMessage) (documents.Review, error) {
	if q == nil || q.reader == nil {
		return documents.Review{}, queryDependencyError("query: review reader is required")
	}
	if err := msg.Validate(); err != nil {
		return documents.Review{}, err
	}
	return q.reader.LoadReview(ctx, msg.Owner)
}

type ListReviewsQuery struct {
	reader DocumentReader
}

func NewListReviewsQuery(reader DocumentReader) *ListReviewsQuery {
	return &ListReviewsQuery{reader: reader}
}

func (q *ListReviewsQuery) Query(ctx context.Context, _ ListReviewsMessage) ([]documents.OwnedReview, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: review reader is required")
	}
	reviews, err := q.reader.ListReviews(ctx)
	if err != nil {
		return nil, core.StorageFailure(err, "query: list reviews")
	}
	return reviews, nil
}

type LoadCustomProblemQuery struct {
	reader DocumentReader
}

func NewLoadCustomProblemQuery(reader DocumentReader) *LoadCustomProblemQuery {
	return &LoadCustomProblemQuery{reader: reader}
}

// Query reports a 404 when the problem has no stored name.
func (q *LoadCustomProblemQuery) Query(ctx context.Context, msg LoadCustomProblemMessage) (documents.CustomProblem, error) {
	if q == nil || q.reader == nil {
		return documents.CustomProblem{}, queryDependencyError("query: custom problem reader is required")
	}
	if err := msg.Validate(); err != nil {
		return documents.CustomProblem{}, err
	}
	problem, found, err := q.reader.LoadCustomProblem(ctx, msg.Owner, msg.ID)
	if err != nil {
		return documents.CustomProblem{}, core.StorageFailure(err, "query: load custom problem")
	}
	if !found {
		return documents.CustomProblem{}, core.NotFound("Not Found")
	}
	return problem, nil
}

type ListCustomProblemsQuery struct {
	reader DocumentReader
}

func NewListCustomProblemsQuery(reader DocumentReader) *ListCustomProblemsQuery {
	return &ListCustomProblemsQuery{reader: reader}
}

func (q *ListCustomProblemsQuery) Query(ctx context.Context, msg ListCustomProblemsMessage) ([]documents.CustomProblemSummary, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: custom problem reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	summaries, err := q.reader.ListCustomProblems(ctx, msg.Owner)
	if err != nil {
		return nil, core.StorageFailure(err, "query: list custom problems")
	}
	return summaries, nil
}

type LoadProblemQuery struct {
	reader DocumentReader
}

func NewLoadProblemQuery(reader DocumentReader) *LoadProblemQuery {
	return &LoadProblemQuery{reader: reader}
}

// Query treats a missing tree as a storage failure rather than a 404.
func (q *LoadProblemQuery) Query(ctx context.Context, msg LoadProblemMessage) (documents.ProblemSnapshot, error) {
	if q == nil || q.reader == nil {
		return documents.ProblemSnapshot{}, queryDependencyError("query: problem reader is required")
	}
	if err := msg.Validate(); err != nil {
		return documents.ProblemSnapshot{}, err
	}
	snapshot, err := q.reader.LoadProblem(ctx, msg.Owner, msg.ProblemID)
	if err != nil {
		return documents.ProblemSnapshot{}, core.StorageFailure(err, "query: load problem")
	}
	return snapshot, nil
}

type FileHistoryQuery struct {
	reader DocumentReader
}

func NewFileHistoryQuery(reader DocumentReader) *FileHistoryQuery {
	return &FileHistoryQuery{reader: reader}
}

func (q *FileHistoryQuery) Query(ctx context.Context, msg FileHistoryMessage) ([]string, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: problem reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	history, err := q.reader.FileHistory(ctx, msg.Owner, msg.ProblemID, msg.NodeID)
	if err != nil {
		return nil, core.StorageFailure(err, "query: file history")
	}
	return history, nil
}

// AuthenticateCredentialsQuery resolves a username and password to the
// stored account.
type AuthenticateCredentialsQuery struct {
	accounts core.AccountStore
}

func NewAuthenticateCredentialsQuery(accounts core.AccountStore) *AuthenticateCredentialsQuery {
	return &AuthenticateCredentialsQuery{accounts: accounts}
}

func (q *AuthenticateCredentialsQuery) Query(ctx context.Context, msg AuthenticateCredentialsMessage) (core.Account, error) {
	if q == nil || q.accounts == nil {
		return core.Account{}, queryDependencyError("query: account store is required")
	}
	if err := msg.Validate(); err != nil {
		return core.Account{}, core.BadInput(InvalidCredentialsMessage)
	}
	account, err := q.accounts.GetByUsername(ctx, strings.TrimSpace(msg.Username))
	if errors.Is(err, core.ErrAccountNotFound) {
		return core.Account{}, core.BadInput(InvalidCredentialsMessage)
	}
	if err != nil {
		return core.Account{}, core.StorageFailure(err, "query: load account")
	}
	if !auth.VerifyPassword(account.PasswordHash, msg.Password) {
		return core.Account{}, core.BadInput(InvalidCredentialsMessage)
	}
	return account, nil
}

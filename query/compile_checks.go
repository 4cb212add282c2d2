package query

import (
	"encoding/json"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
)

var (
	_ gocmd.Querier[LoadStepTreeMessage, StoredDocument]                         = (*LoadStepTreeQuery)(nil)
	_ gocmd.Querier[LoadAbstractionMessage, json.RawMessage]                     = (*LoadAbstractionQuery)(nil)
	_ gocmd.Querier[LoadAbstractionStepsMessage, StoredDocument]                 = (*LoadAbstractionStepsQuery)(nil)
	_ gocmd.Querier[LoadReviewMessage, documents.Review]                         = (*LoadReviewQuery)(nil)
	_ gocmd.Querier[ListReviewsMessage, []documents.OwnedReview]                 = (*ListReviewsQuery)(nil)
	_ gocmd.Querier[LoadCustomProblemMessage, documents.CustomProblem]           = (*LoadCustomProblemQuery)(nil)
	_ gocmd.Querier[ListCustomProblemsMessage, []documents.CustomProblemSummary] = (*ListCustomProblemsQuery)(nil)
	_ gocmd.Querier[LoadProblemMessage, documents.ProblemSnapshot]               = (*LoadProblemQuery)(nil)
	_ gocmd.Querier[FileHistoryMessage, []string]                                = (*FileHistoryQuery)(nil)
	_ gocmd.Querier[AuthenticateCredentialsMessage, core.Account]                = (*AuthenticateCredentialsQuery)(nil)

	_ DocumentReader = (*documents.Store)(nil)
)

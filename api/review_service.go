package api

import (
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-stepgate/command"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
	"github.com/goliatone/go-stepgate/query"
)

const ReviewServicePath = "/review/v1/"

const (
	InvalidPayloadMessage    = "Invalid payload"
	ReviewSavedMessage       = "Review saved"
	SaveReviewFailedMessage  = "Failed to save review"
	LoadReviewsFailedMessage = "Failed to load all reviews"
)

const maxReviewRating = 5

type reviewHandlers struct {
	commands Commands
	queries  Queries
	body     bodyDecoder
	logger   core.Logger
}

// NewReviewService stores one review per user. Listing every review is
// public.
func NewReviewService(deps Dependencies) (*Service, error) {
	h := &reviewHandlers{
		commands: deps.Commands,
		queries:  deps.Queries,
		body:     newBodyDecoder(deps.MaxBodyBytes),
		logger:   deps.Logger,
	}
	return NewService(ReviewServicePath, deps.Authenticator, []Route{
		{Method: http.MethodGet, Action: "all", Access: AccessPublic, Handle: h.listReviews},
		{Method: http.MethodPost, Action: "save", Handle: h.saveReview},
		{Method: http.MethodGet, Action: "load", Handle: h.loadReview},
	}, WithAuthenticateFirst(), WithServiceLogger(deps.Logger))
}

func (h *reviewHandlers) listReviews(call Call) (*core.Response, error) {
	reviews, err := ask(call.Context(), h.queries.ListReviews, query.ListReviewsMessage{})
	if err != nil {
		return failWith(call, h.logger, err, LoadReviewsFailedMessage)
	}
	return jsonResponse(reviews)
}

// saveReview requires a numeric rating in [0, 5] and a string message.
func (h *reviewHandlers) saveReview(call Call) (*core.Response, error) {
	var body struct {
		Rating  json.RawMessage `json:"rating"`
		Message json.RawMessage `json:"message"`
	}
	if err := h.body.decode(call.Request, &body); err != nil {
		return nil, err
	}
	rating, ok := jsonNumber(body.Rating)
	if !ok || rating < 0 || rating > maxReviewRating {
		return nil, core.BadInput(InvalidPayloadMessage)
	}
	message, ok := jsonString(body.Message)
	if !ok {
		return nil, core.BadInput(InvalidPayloadMessage)
	}
	err := execute(call.Context(), h.commands.SaveReview, command.SaveReviewMessage{
		Owner:  call.Owner(),
		Review: documents.Review{Rating: rating, Message: message},
	})
	if err != nil {
		return failWith(call, h.logger, err, SaveReviewFailedMessage)
	}
	return core.Text(http.StatusCreated, ReviewSavedMessage), nil
}

// loadReview never fails; read errors fall back to the empty review.
func (h *reviewHandlers) loadReview(call Call) (*core.Response, error) {
	review, err := ask(call.Context(), h.queries.LoadReview, query.LoadReviewMessage{Owner: call.Owner()})
	if err != nil {
		core.LogError(call.Context(), h.logger, "load review failed", map[string]any{"error": err.Error()})
		review = documents.Review{}
	}
	return jsonResponse(review)
}

package documents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-stepgate/core"
)

type Review struct {
	Rating  float64 `json:"rating"`
	Message string  `json:"message"`
}

type OwnedReview struct {
	Username string  `json:"username"`
	Rating   float64 `json:"rating"`
	Message  string  `json:"message"`
}

func (s *Store) SaveReview(ctx context.Context, owner string, review Review) error {
	return s.putJSON(ctx, ReviewKey(owner), review)
}

// LoadReview returns the zero review when none is stored or the stored one
// cannot be read.
func (s *Store) LoadReview(ctx context.Context, owner string) (Review, error) {
	body, found, err := s.getBody(ctx, ReviewKey(owner))
	if err != nil || !found {
		return Review{}, nil
	}
	var review Review
	if err := json.Unmarshal(body, &review); err != nil {
		return Review{}, nil
	}
	return review, nil
}

// ListReviews scans the whole key space for top level review documents.
// Zero ratings and unreadable entries are skipped.
func (s *Store) ListReviews(ctx context.Context) ([]OwnedReview, error) {
	reviews := []OwnedReview{}
	err := s.walk(ctx, "", func(page []core.ObjectInfo) error {
		for _, info := range page {
			owner, ok := ReviewOwner(info.Key)
			if !ok {
				continue
			}
			body, found, err := s.getBody(ctx, info.Key)
			if err != nil || !found {
				continue
			}
			var review Review
			if err := json.Unmarshal(body, &review); err != nil {
				continue
			}
			if review.Rating == 0 {
				continue
			}
			reviews = append(reviews, OwnedReview{Username: owner, Rating: review.Rating, Message: review.Message})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("documents: list reviews: %w", err)
	}
	return reviews, nil
}

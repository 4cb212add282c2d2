package documents

import (
	"context"
	"encoding/json"
	"fmt"
)

// AbstractionSteps is the saved state of one in-between abstraction. Fields
// the caller omitted stay omitted.
type AbstractionSteps struct {
	Steps          json.RawMessage `json:"steps,omitempty"`
	IsAvailable    json.RawMessage `json:"isAvailable,omitempty"`
	AllIsAvailable json.RawMessage `json:"allIsAvailable,omitempty"`
	AllIsHinted    json.RawMessage `json:"allIsHinted,omitempty"`
}

func (s *Store) SaveAbstractionSteps(ctx context.Context, owner string, problemID string, abstractionID string, steps AbstractionSteps) error {
	return s.putJSON(ctx, AbstractionStepsKey(owner, problemID, abstractionID), steps)
}

func (s *Store) LoadAbstractionSteps(ctx context.Context, owner string, problemID string, abstractionID string) (json.RawMessage, bool, error) {
	key := AbstractionStepsKey(owner, problemID, abstractionID)
	body, found, err := s.getBody(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	if !json.Valid(body) {
		return nil, false, fmt.Errorf("documents: %s holds invalid json", key)
	}
	return json.RawMessage(body), true, nil
}

func (s *Store) DeleteAbstractionSteps(ctx context.Context, owner string, problemID string, abstractionID string) error {
	return s.delete(ctx, AbstractionStepsKey(owner, problemID, abstractionID))
}

// DeleteAllAbstractionSteps sweeps every in-between abstraction of a problem.
func (s *Store) DeleteAllAbstractionSteps(ctx context.Context, owner string, problemID string) error {
	return s.DeletePrefix(ctx, AbstractionStepsPrefix(owner, problemID))
}

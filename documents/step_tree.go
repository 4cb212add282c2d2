package documents

import (
	"context"
	"encoding/json"
	"fmt"
)

type stepTreeDocument struct {
	Root json.RawMessage `json:"root"`
}

// SaveStepTree stores stepTree wrapped as {"root": stepTree}.
func (s *Store) SaveStepTree(ctx context.Context, owner string, problemID string, stepTree json.RawMessage) error {
	if len(stepTree) == 0 {
		stepTree = json.RawMessage("null")
	}
	return s.putJSON(ctx, StepTreeKey(owner, problemID), stepTreeDocument{Root: stepTree})
}

// LoadStepTree returns the stored document, or found=false when nothing was
// saved for the problem.
func (s *Store) LoadStepTree(ctx context.Context, owner string, problemID string) (json.RawMessage, bool, error) {
	key := StepTreeKey(owner, problemID)
	body, found, err := s.getBody(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	if !json.Valid(body) {
		return nil, false, fmt.Errorf("documents: %s holds invalid json", key)
	}
	return json.RawMessage(body), true, nil
}

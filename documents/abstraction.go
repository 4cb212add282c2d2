package documents

import (
	"context"
	"encoding/json"
)

var emptyAbstraction = json.RawMessage("[]")

func (s *Store) SaveAbstraction(ctx context.Context, owner string, problemID string, abstraction json.RawMessage) error {
	return s.putJSON(ctx, AbstractionKey(owner, problemID), abstraction)
}

// LoadAbstraction never reports absence: a missing or unreadable document
// loads as an empty list.
func (s *Store) LoadAbstraction(ctx context.Context, owner string, problemID string) (json.RawMessage, error) {
	body, found, err := s.getBody(ctx, AbstractionKey(owner, problemID))
	if err != nil {
		return nil, err
	}
	if !found || !json.Valid(body) || string(body) == "null" {
		return emptyAbstraction, nil
	}
	return json.RawMessage(body), nil
}

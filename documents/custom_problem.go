package documents

import (
	"context"
	"fmt"

	"github.com/goliatone/go-stepgate/core"
	"golang.org/x/sync/errgroup"
)

// CustomProblem is a user authored exercise. DefaultText is persisted under
// the "solution" field.
type CustomProblem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DefaultText string `json:"defaultText"`
	Tests       string `json:"tests"`
}

type CustomProblemSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Store) SaveCustomProblem(ctx context.Context, owner string, problem CustomProblem) error {
	if problem.ID == "" {
		return fmt.Errorf("documents: custom problem id is required")
	}
	return s.PutMany(ctx,
		Write{Key: CustomProblemFieldKey(owner, problem.ID, FieldName), Body: []byte(problem.Name), ContentType: ContentTypeText},
		Write{Key: CustomProblemFieldKey(owner, problem.ID, FieldDescription), Body: []byte(problem.Description), ContentType: ContentTypeText},
		Write{Key: CustomProblemFieldKey(owner, problem.ID, FieldSolution), Body: []byte(problem.DefaultText), ContentType: ContentTypeText},
		Write{Key: CustomProblemFieldKey(owner, problem.ID, FieldTests), Body: []byte(problem.Tests), ContentType: ContentTypeText},
	)
}

// LoadCustomProblem reads the four fields concurrently. A problem without a
// stored name does not exist.
func (s *Store) LoadCustomProblem(ctx context.Context, owner string, id string) (CustomProblem, bool, error) {
	fields := []string{FieldName, FieldDescription, FieldSolution, FieldTests}
	values := make([]string, len(fields))
	present := make([]bool, len(fields))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, field := range fields {
		group.Go(func() error {
			body, found, err := s.getBody(groupCtx, CustomProblemFieldKey(owner, id, field))
			if err != nil {
				return err
			}
			values[i] = string(body)
			present[i] = found
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return CustomProblem{}, false, err
	}
	if !present[0] {
		return CustomProblem{}, false, nil
	}
	return CustomProblem{
		ID:          id,
		Name:        values[0],
		Description: values[1],
		DefaultText: values[2],
		Tests:       values[3],
	}, true, nil
}

// ListCustomProblems returns one summary per problem id found under the
// owner, in key order.
func (s *Store) ListCustomProblems(ctx context.Context, owner string) ([]CustomProblemSummary, error) {
	order := []string{}
	summaries := map[string]*CustomProblemSummary{}

	err := s.walk(ctx, owner+"/", func(page []core.ObjectInfo) error {
		type fieldRead struct {
			summary *CustomProblemSummary
			field   string
			key     string
		}
		reads := []fieldRead{}
		for _, info := range page {
			id, field, ok := customProblemField(info.Key)
			if !ok {
				continue
			}
			summary, seen := summaries[id]
			if !seen {
				summary = &CustomProblemSummary{ID: id}
				summaries[id] = summary
				order = append(order, id)
			}
			if field == FieldName || field == FieldDescription {
				reads = append(reads, fieldRead{summary: summary, field: field, key: info.Key})
			}
		}

		values := make([]string, len(reads))
		group, groupCtx := errgroup.WithContext(ctx)
		for i, read := range reads {
			group.Go(func() error {
				body, _, err := s.getBody(groupCtx, read.key)
				if err != nil {
					return err
				}
				values[i] = string(body)
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}
		for i, read := range reads {
			if read.field == FieldName {
				read.summary.Name = values[i]
			} else {
				read.summary.Description = values[i]
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]CustomProblemSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *summaries[id])
	}
	return out, nil
}

func (s *Store) DeleteCustomProblem(ctx context.Context, owner string, id string) error {
	return s.DeletePrefix(ctx, CustomProblemPrefix(owner, id))
}

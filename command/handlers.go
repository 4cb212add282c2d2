package command

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-stepgate/auth"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
	"github.com/google/uuid"
)

// DocumentWriter is the mutating half of documents.Store.
type DocumentWriter interface {
	SaveStepTree(ctx context.Context, owner string, problemID string, stepTree json.RawMessage) error
	SaveAbstraction(ctx context.Context, owner string, problemID string, abstraction json.RawMessage) error
	SaveAbstractionSteps(ctx context.Context, owner string, problemID string, abstractionID string, steps documents.AbstractionSteps) error
	DeleteAbstractionSteps(ctx context.Context, owner string, problemID string, abstractionID string) error
	DeleteAllAbstractionSteps(ctx context.Context, owner string, problemID string) error
	SaveReview(ctx context.Context, owner string, review documents.Review) error
	SaveCustomProblem(ctx context.Context, owner string, problem documents.CustomProblem) error
	LoadCustomProblem(ctx context.Context, owner string, id string) (documents.CustomProblem, bool, error)
	DeleteCustomProblem(ctx context.Context, owner string, id string) error
	SaveProblem(ctx context.Context, owner string, problemID string, tree json.RawMessage, codeMap map[string]string, deletedFiles []string) error
}

type SaveStepTreeCommand struct {
	store DocumentWriter
}

func NewSaveStepTreeCommand(store DocumentWriter) *SaveStepTreeCommand {
	return &SaveStepTreeCommand{store: store}
}

func (c *SaveStepTreeCommand) Execute(ctx context.Context, msg SaveStepTreeMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: step tree store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := c.store.SaveStepTree(ctx, msg.Owner, msg.ProblemID, msg.StepTree); err != nil {
		return core.StorageFailure(err, "command: save step tree")
	}
	return nil
}

type SaveAbstractionCommand struct {
	store DocumentWriter
}

func NewSaveAbstractionCommand(store DocumentWriter) *SaveAbstractionCommand {
	return &SaveAbstractionCommand{store: store}
}

func (c *SaveAbstractionCommand) Execute(ctx context.Context, msg SaveAbstractionMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: abstraction store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := c.store.SaveAbstraction(ctx, msg.Owner, msg.ProblemID, msg.Abstraction); err != nil {
		return core.StorageFailure(err, "command: save abstraction")
	}
	return nil
}

type SaveAbstractionStepsCommand struct {
	store DocumentWriter
}

func NewSaveAbstractionStepsCommand(store DocumentWriter) *SaveAbstractionStepsCommand {
	return &SaveAbstractionStepsCommand{store: store}
}

func (c *SaveAbstractionStepsCommand) Execute(ctx context.Context, msg SaveAbstractionStepsMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: abstraction steps store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := c.store.SaveAbstractionSteps(ctx, msg.Owner, msg.ProblemID, msg.AbstractionID, msg.Steps); err != nil {
		return core.StorageFailure(err, "command: save abstraction steps")
	}
	return nil
}

type DeleteAbstractionStepsCommand struct {
	store DocumentWriter
}

func NewDeleteAbstractionStepsCommand(store DocumentWriter) *DeleteAbstractionStepsCommand {
	return &DeleteAbstractionStepsCommand{store: store}
}

func (c *DeleteAbstractionStepsCommand) Execute(ctx context.Context, msg DeleteAbstractionStepsMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: abstraction steps store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := c.store.DeleteAbstractionSteps(ctx, msg.Owner, msg.ProblemID, msg.AbstractionID); err != nil {
		return core.StorageFailure(err, "command: delete abstraction steps")
	}
	return nil
}

type DeleteAllAbstractionStepsCommand struct {
	store DocumentWriter
}

func NewDeleteAllAbstractionStepsCommand(store DocumentWriter) *DeleteAllAbstractionStepsCommand {
	return &DeleteAllAbstractionStepsCommand{store: store}
}

func (c *DeleteAllAbstractionStepsCommand) Execute(ctx context.Context, msg DeleteAllAbstractionStepsMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: abstraction steps store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := c.store.DeleteAllAbstractionSteps(ctx, msg.Owner, msg.ProblemID); err != nil {
		return core.StorageFailure(err, "command: delete all abstraction steps")
	}
	return nil
}

type SaveReviewCommand struct {
	store DocumentWriter
}

func NewSaveReviewCommand(store DocumentWriter) *SaveReviewCommand {
	return &SaveReviewCommand{store: store}
}

func (c *SaveReviewCommand) Execute(ctx context.Context, msg SaveReviewMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: review store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := c.store.SaveReview(ctx, msg.Owner, msg.Review); err != nil {
		return core.StorageFailure(err, "command: save review")
	}
	return nil
}

// SaveCustomProblemCommand stores the problem id it wrote as the result. A
// blank id is replaced with a fresh uuid.
type SaveCustomProblemCommand struct {
	store DocumentWriter
}

func NewSaveCustomProblemCommand(store DocumentWriter) *SaveCustomProblemCommand {
	return &SaveCustomProblemCommand{store: store}
}

func (c *SaveCustomProblemCommand) Execute(ctx context.Context, msg SaveCustomProblemMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: custom problem store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	problem := msg.Problem
	if strings.TrimSpace(problem.ID) == "" {
		problem.ID = uuid.NewString()
	}
	if err := c.store.SaveCustomProblem(ctx, msg.Owner, problem); err != nil {
		return core.StorageFailure(err, "command: save custom problem")
	}
	storeResult(ctx, problem.ID)
	return nil
}

type UpdateCustomProblemCommand struct {
	store DocumentWriter
}

func NewUpdateCustomProblemCommand(store DocumentWriter) *UpdateCustomProblemCommand {
	return &UpdateCustomProblemCommand{store: store}
}

func (c *UpdateCustomProblemCommand) Execute(ctx context.Context, msg UpdateCustomProblemMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: custom problem store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	current, found, err := c.store.LoadCustomProblem(ctx, msg.Owner, msg.ID)
	if err != nil {
		return core.StorageFailure(err, "command: load custom problem")
	}
	if !found {
		return core.NotFound("Not Found")
	}
	merged := msg.Patch.apply(current)
	if err := c.store.SaveCustomProblem(ctx, msg.Owner, merged); err != nil {
		return core.StorageFailure(err, "command: update custom problem")
	}
	storeResult(ctx, merged)
	return nil
}

func (p CustomProblemPatch) apply(problem documents.CustomProblem) documents.CustomProblem {
	if p.Name != nil {
		problem.Name = *p.Name
	}
	if p.Description != nil {
		problem.Description = *p.Description
	}
	if p.DefaultText != nil {
		problem.DefaultText = *p.DefaultText
	}
	if p.Tests != nil {
		problem.Tests = *p.Tests
	}
	return problem
}

type DeleteCustomProblemCommand struct {
	store DocumentWriter
}

func NewDeleteCustomProblemCommand(store DocumentWriter) *DeleteCustomProblemCommand {
	return &DeleteCustomProblemCommand{store: store}
}

func (c *DeleteCustomProblemCommand) Execute(ctx context.Context, msg DeleteCustomProblemMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: custom problem store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := c.store.DeleteCustomProblem(ctx, msg.Owner, msg.ID); err != nil {
		return core.StorageFailure(err, "command: delete custom problem")
	}
	return nil
}

type SaveProblemCommand struct {
	store DocumentWriter
}

func NewSaveProblemCommand(store DocumentWriter) *SaveProblemCommand {
	return &SaveProblemCommand{store: store}
}

func (c *SaveProblemCommand) Execute(ctx context.Context, msg SaveProblemMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: problem store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := c.store.SaveProblem(ctx, msg.Owner, msg.ProblemID, msg.Tree, msg.CodeMap, msg.DeletedFiles); err != nil {
		return core.StorageFailure(err, "command: save problem")
	}
	return nil
}

// SignupCommand creates a password account. The created account, with its
// bcrypt hash, is stored as the result.
type SignupCommand struct {
	accounts core.AccountStore
	now      func() time.Time
}

func NewSignupCommand(accounts core.AccountStore, now func() time.Time) *SignupCommand {
	if now == nil {
		now = time.Now
	}
	return &SignupCommand{accounts: accounts, now: now}
}

func (c *SignupCommand) Execute(ctx context.Context, msg SignupMessage) error {
	if c == nil || c.accounts == nil {
		return commandDependencyError("command: account store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	hashed, err := auth.HashPassword(msg.Password)
	if err != nil {
		return core.StorageFailure(err, "command: hash password")
	}
	created, err := c.accounts.Create(ctx, core.Account{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(msg.Username),
		Email:        strings.TrimSpace(msg.Email),
		PasswordHash: hashed,
		CreatedAt:    c.now().UTC(),
	})
	if errors.Is(err, core.ErrAccountExists) {
		return core.Conflict("User already exists")
	}
	if err != nil {
		return core.StorageFailure(err, "command: create account")
	}
	storeResult(ctx, created)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}

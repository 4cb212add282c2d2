package command

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-stepgate/auth"
	"github.com/goliatone/go-stepgate/documents"
)

const (
	TypeSaveStepTree              = "stepgate.command.step_tree.save"
	TypeSaveAbstraction           = "stepgate.command.abstraction.save"
	TypeSaveAbstractionSteps      = "stepgate.command.abstraction_steps.save"
	TypeDeleteAbstractionSteps    = "stepgate.command.abstraction_steps.delete"
	TypeDeleteAllAbstractionSteps = "stepgate.command.abstraction_steps.delete_all"
	TypeSaveReview                = "stepgate.command.review.save"
	TypeSaveCustomProblem         = "stepgate.command.custom_problem.save"
	TypeUpdateCustomProblem       = "stepgate.command.custom_problem.update"
	TypeDeleteCustomProblem       = "stepgate.command.custom_problem.delete"
	TypeSaveProblem               = "stepgate.command.problem.save"
	TypeSignup                    = "stepgate.command.account.signup"
)

type SaveStepTreeMessage struct {
	Owner     string
	ProblemID string
	StepTree  json.RawMessage
}

func (SaveStepTreeMessage) Type() string { return TypeSaveStepTree }

func (m SaveStepTreeMessage) Validate() error {
	return validateOwnerAndProblem(m.Owner, m.ProblemID)
}

type SaveAbstractionMessage struct {
	Owner       string
	ProblemID   string
	Abstraction json.RawMessage
}

func (SaveAbstractionMessage) Type() string { return TypeSaveAbstraction }

func (m SaveAbstractionMessage) Validate() error {
	if err := validateOwnerAndProblem(m.Owner, m.ProblemID); err != nil {
		return err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(m.Abstraction, &items); err != nil || items == nil {
		return commandValidationError("abstraction", "must be an array")
	}
	return nil
}

type SaveAbstractionStepsMessage struct {
	Owner         string
	ProblemID     string
	AbstractionID string
	Steps         documents.AbstractionSteps
}

func (SaveAbstractionStepsMessage) Type() string { return TypeSaveAbstractionSteps }

func (m SaveAbstractionStepsMessage) Validate() error {
	if err := validateOwnerAndProblem(m.Owner, m.ProblemID); err != nil {
		return err
	}
	return requireField("abstraction_id", m.AbstractionID)
}

type DeleteAbstractionStepsMessage struct {
	Owner         string
	ProblemID     string
	AbstractionID string
}

func (DeleteAbstractionStepsMessage) Type() string { return TypeDeleteAbstractionSteps }

func (m DeleteAbstractionStepsMessage) Validate() error {
	if err := validateOwnerAndProblem(m.Owner, m.ProblemID); err != nil {
		return err
	}
	return requireField("abstraction_id", m.AbstractionID)
}

type DeleteAllAbstractionStepsMessage struct {
	Owner     string
	ProblemID string
}

func (DeleteAllAbstractionStepsMessage) Type() string { return TypeDeleteAllAbstractionSteps }

func (m DeleteAllAbstractionStepsMessage) Validate() error {
	return validateOwnerAndProblem(m.Owner, m.ProblemID)
}

type SaveReviewMessage struct {
	Owner  string
	Review documents.Review
}

func (SaveReviewMessage) Type() string { return TypeSaveReview }

func (m SaveReviewMessage) Validate() error {
	if err := requireField("owner", m.Owner); err != nil {
		return err
	}
	if m.Review.Rating < 0 || m.Review.Rating > 5 {
		return commandValidationError("rating", "must be between 0 and 5")
	}
	return nil
}

type SaveCustomProblemMessage struct {
	Owner   string
	Problem documents.CustomProblem
}

func (SaveCustomProblemMessage) Type() string { return TypeSaveCustomProblem }

func (m SaveCustomProblemMessage) Validate() error {
	return requireField("owner", m.Owner)
}

// CustomProblemPatch carries the fields of an update; nil fields keep their
// stored value.
type CustomProblemPatch struct {
	Name        *string
	Description *string
	DefaultText *string
	Tests       *string
}

type UpdateCustomProblemMessage struct {
	Owner string
	ID    string
	Patch CustomProblemPatch
}

func (UpdateCustomProblemMessage) Type() string { return TypeUpdateCustomProblem }

func (m UpdateCustomProblemMessage) Validate() error {
	if err := requireField("owner", m.Owner); err != nil {
		return err
	}
	return requireField("id", m.ID)
}

type DeleteCustomProblemMessage struct {
	Owner string
	ID    string
}

func (DeleteCustomProblemMessage) Type() string { return TypeDeleteCustomProblem }

func (m DeleteCustomProblemMessage) Validate() error {
	if err := requireField("owner", m.Owner); err != nil {
		return err
	}
	return requireField("id", m.ID)
}

type SaveProblemMessage struct {
	Owner        string
	ProblemID    string
	Tree         json.RawMessage
	CodeMap      map[string]string
	DeletedFiles []string
}

func (SaveProblemMessage) Type() string { return TypeSaveProblem }

func (m SaveProblemMessage) Validate() error {
	return validateOwnerAndProblem(m.Owner, m.ProblemID)
}

type SignupMessage struct {
	Username string
	Password string
	Email    string
}

func (SignupMessage) Type() string { return TypeSignup }

func (m SignupMessage) Validate() error {
	if err := requireField("username", m.Username); err != nil {
		return err
	}
	if !auth.ValidUsername(m.Username) {
		return commandValidationError("username", "must not contain /")
	}
	if m.Password == "" {
		return commandValidationError("password", "is required")
	}
	return requireField("email", m.Email)
}

func validateOwnerAndProblem(owner string, problemID string) error {
	if err := requireField("owner", owner); err != nil {
		return err
	}
	return requireField("problem_id", problemID)
}

func requireField(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return commandValidationError(field, "is required")
	}
	return nil
}

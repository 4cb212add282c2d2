package query

import "strings"

const (
	TypeLoadStepTree            = "stepgate.query.step_tree.load"
	TypeLoadAbstraction         = "stepgate.query.abstraction.load"
	TypeLoadAbstractionSteps    = "stepgate.query.abstraction_steps.load"
	TypeLoadReview              = "stepgate.query.review.load"
	TypeListReviews             = "stepgate.query.review.list"
	TypeLoadCustomProblem       = "stepgate.query.custom_problem.load"
	TypeListCustomProblems      = "stepgate.query.custom_problem.list"
	TypeLoadProblem             = "stepgate.query.problem.load"
	TypeFileHistory             = "stepgate.query.problem.file_history"
	TypeAuthenticateCredentials = "stepgate.query.account.authenticate"
)

type LoadStepTreeMessage struct {
	Owner     string
	ProblemID string
}

func (LoadStepTreeMessage) Type() string { return TypeLoadStepTree }

func (m LoadStepTreeMessage) Validate() error {
	return validateOwnerAndProblem(m.Owner, m.ProblemID)
}

type LoadAbstractionMessage struct {
	Owner     string
	ProblemID string
}

func (LoadAbstractionMessage) Type() string { return TypeLoadAbstraction }

func (m LoadAbstractionMessage) Validate() error {
	return validateOwnerAndProblem(m.Owner, m.ProblemID)
}

type LoadAbstractionStepsMessage struct {
	Owner         string
	ProblemID     string
	AbstractionID string
}

func (LoadAbstractionStepsMessage) Type() string { return TypeLoadAbstractionSteps }

func (m LoadAbstractionStepsMessage) Validate() error {
	if err := validateOwnerAndProblem(m.Owner, m.ProblemID); err != nil {
		return err
	}
	return requireField("abstraction_id", m.AbstractionID)
}

type LoadReviewMessage struct {
	Owner string
}

func (LoadReviewMessage) Type() string { return TypeLoadReview }

func (m LoadReviewMessage) Validate() error {
	return requireField("owner", m.Owner)
}

type ListReviewsMessage struct{}

func (ListReviewsMessage) Type() string { return TypeListReviews }

func (ListReviewsMessage) Validate() error { return nil }

type LoadCustomProblemMessage struct {
	Owner string
	ID    string
}

func (LoadCustomProblemMessage) Type() string { return TypeLoadCustomProblem }

func (m LoadCustomProblemMessage) Validate() error {
	if err := requireField("owner", m.Owner); err != nil {
		return err
	}
	return requireField("id", m.ID)
}

type ListCustomProblemsMessage struct {
	Owner string
}

func (ListCustomProblemsMessage) Type() string { return TypeListCustomProblems }

func (m ListCustomProblemsMessage) Validate() error {
	return requireField("owner", m.Owner)
}

type LoadProblemMessage struct {
	Owner     string
	ProblemID string
}

func (LoadProblemMessage) Type() string { return TypeLoadProblem }

func (m LoadProblemMessage) Validate() error {
	return validateOwnerAndProblem(m.Owner, m.ProblemID)
}

type FileHistoryMessage struct {
	Owner     string
	ProblemID string
	NodeID    string
}

func (FileHistoryMessage) Type() string { return TypeFileHistory }

func (m FileHistoryMessage) Validate() error {
	if err := validateOwnerAndProblem(m.Owner, m.ProblemID); err != nil {
		return err
	}
	return requireField("node_id", m.NodeID)
}

type AuthenticateCredentialsMessage struct {
	Username string
	Password string
}

func (AuthenticateCredentialsMessage) Type() string { return TypeAuthenticateCredentials }

func (m AuthenticateCredentialsMessage) Validate() error {
	return requireField("username", m.Username)
}

func validateOwnerAndProblem(owner string, problemID string) error {
	if err := requireField("owner", owner); err != nil {
		return err
	}
	return requireField("problem_id", problemID)
}

func requireField(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return queryValidationError(field, "is required")
	}
	return nil
}

package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-stepgate/documents"
)

var (
	_ gocmd.Commander[SaveStepTreeMessage]              = (*SaveStepTreeCommand)(nil)
	_ gocmd.Commander[SaveAbstractionMessage]           = (*SaveAbstractionCommand)(nil)
	_ gocmd.Commander[SaveAbstractionStepsMessage]      = (*SaveAbstractionStepsCommand)(nil)
	_ gocmd.Commander[DeleteAbstractionStepsMessage]    = (*DeleteAbstractionStepsCommand)(nil)
	_ gocmd.Commander[DeleteAllAbstractionStepsMessage] = (*DeleteAllAbstractionStepsCommand)(nil)
	_ gocmd.Commander[SaveReviewMessage]                = (*SaveReviewCommand)(nil)
	_ gocmd.Commander[SaveCustomProblemMessage]         = (*SaveCustomProblemCommand)(nil)
	_ gocmd.Commander[UpdateCustomProblemMessage]       = (*UpdateCustomProblemCommand)(nil)
	_ gocmd.Commander[DeleteCustomProblemMessage]       = (*DeleteCustomProblemCommand)(nil)
	_ gocmd.Commander[SaveProblemMessage]               = (*SaveProblemCommand)(nil)
	_ gocmd.Commander[SignupMessage]                    = (*SignupCommand)(nil)

	_ DocumentWriter = (*documents.Store)(nil)
)

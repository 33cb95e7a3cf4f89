package api

import (
	"formharbor/services"
)

// APIHandler holds all dependencies for API handlers.
type APIHandler struct {
	accountService    services.AccountService
	submissionService services.SubmissionService
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(
	accountService services.AccountService,
	submissionService services.SubmissionService,
) *APIHandler {
	return &APIHandler{
		accountService:    accountService,
		submissionService: submissionService,
	}
}

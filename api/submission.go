package api

import (
	"errors"
	"net/http"
	"time"

	"formharbor/middleware"
	"formharbor/models"
	"formharbor/services"
	"formharbor/utils"

	"github.com/gin-gonic/gin"
)

// PublicSubmitHandler accepts a submission from the embeddable form. The
// submitter is an anonymous visitor, so the owning account id arrives as a
// path parameter rather than from a session.
func (h *APIHandler) PublicSubmitHandler(c *gin.Context) {
	accountID := c.Param("accountID")

	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid submission payload: "+err.Error(), nil)
		return
	}

	submission, err := h.submissionService.Submit(accountID, req, time.Now())
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			utils.SendJSONError(c, http.StatusBadRequest, verr.Error(), nil)
		case errors.Is(err, services.ErrQuotaExceeded):
			// Distinct, user-actionable condition: the form owner has to
			// upgrade, the visitor should not retry.
			utils.SendJSONError(c, http.StatusPaymentRequired, "Monthly submission limit reached. Please upgrade your plan.", nil)
		case errors.Is(err, services.ErrAccountNotFound):
			utils.SendJSONError(c, http.StatusNotFound, "Unknown form.", nil)
		default:
			utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           submission.ID,
		"submitted_at": submission.SubmittedAt,
	})
}

// ListSubmissionsHandler returns the authenticated account's submissions,
// newest first.
func (h *APIHandler) ListSubmissionsHandler(c *gin.Context) {
	accountID := middleware.AccountID(c)

	submissions, err := h.submissionService.ListForAccount(accountID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

func (h *APIHandler) GetSubmissionHandler(c *gin.Context) {
	accountID := middleware.AccountID(c)

	submission, err := h.submissionService.Get(accountID, c.Param("id"))
	if err != nil {
		h.respondSubmissionError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// ToggleReadHandler flips the read flag on a submission.
func (h *APIHandler) ToggleReadHandler(c *gin.Context) {
	accountID := middleware.AccountID(c)

	submission, err := h.submissionService.ToggleRead(accountID, c.Param("id"))
	if err != nil {
		h.respondSubmissionError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

func (h *APIHandler) UpdateNotesHandler(c *gin.Context) {
	accountID := middleware.AccountID(c)

	var req models.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid notes payload: "+err.Error(), nil)
		return
	}

	submission, err := h.submissionService.UpdateNotes(accountID, c.Param("id"), req.Notes)
	if err != nil {
		h.respondSubmissionError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// DeleteSubmissionHandler removes a submission. Quota is not refunded.
func (h *APIHandler) DeleteSubmissionHandler(c *gin.Context) {
	accountID := middleware.AccountID(c)

	if err := h.submissionService.Delete(accountID, c.Param("id")); err != nil {
		h.respondSubmissionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StatsHandler returns the dashboard header numbers: month usage against the
// limit and the unread backlog.
func (h *APIHandler) StatsHandler(c *gin.Context) {
	accountID := middleware.AccountID(c)

	stats, err := h.submissionService.Stats(accountID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			utils.SendJSONError(c, http.StatusNotFound, "Account not found.", nil)
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *APIHandler) respondSubmissionError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrSubmissionNotFound) {
		utils.SendJSONError(c, http.StatusNotFound, "Submission not found.", nil)
		return
	}
	utils.SendJSONError(c, http.StatusInternalServerError, "", err)
}

package api

import (
	"errors"
	"net/http"

	"formharbor/models"
	"formharbor/services"
	"formharbor/utils"

	"github.com/gin-gonic/gin"
)

// RegisterHandler creates a new account on the free tier.
func (h *APIHandler) RegisterHandler(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid registration payload: "+err.Error(), nil)
		return
	}

	account, err := h.accountService.Register(req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			utils.SendJSONError(c, http.StatusConflict, err.Error(), nil)
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":                       account.ID,
		"email":                    account.Email,
		"subscription_tier":        account.SubscriptionTier,
		"monthly_submission_limit": account.MonthlySubmissionLimit,
	})
}

// LoginHandler verifies credentials and returns a bearer token.
func (h *APIHandler) LoginHandler(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid login payload: "+err.Error(), nil)
		return
	}

	token, account, err := h.accountService.Login(creds)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.SendJSONError(c, http.StatusUnauthorized, "Invalid email or password.", nil)
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Token:            token,
		Name:             account.Name,
		Email:            account.Email,
		SubscriptionTier: account.SubscriptionTier,
	})
}

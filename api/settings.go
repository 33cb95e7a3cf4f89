package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"formharbor/config"
	"formharbor/middleware"
	"formharbor/models"
	"formharbor/services"
	"formharbor/utils"

	"github.com/gin-gonic/gin"
)

// planFeatures lists the marketing feature set per tier, shown on the
// settings page next to the limits.
var planFeatures = map[string][]string{
	"free":       {"25 submissions/month", "Basic analytics", "Email notifications", "48-hour support"},
	"pro":        {"100 submissions/month", "Advanced analytics", "Priority email notifications", "24-hour support", "Custom branding"},
	"enterprise": {"Unlimited submissions", "Full analytics suite", "Real-time notifications", "Dedicated support", "Custom branding", "API access"},
}

// PlansHandler returns the subscription tier catalog.
func (h *APIHandler) PlansHandler(c *gin.Context) {
	type plan struct {
		Name     string   `json:"name"`
		Limit    int      `json:"monthly_submission_limit"`
		Features []string `json:"features"`
	}

	plans := make([]plan, 0, len(config.AppConfig.Tiers))
	for name, limit := range config.AppConfig.Tiers {
		plans = append(plans, plan{Name: name, Limit: limit, Features: planFeatures[name]})
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Limit < plans[j].Limit })

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// UpdateTierHandler switches the authenticated account to another tier.
func (h *APIHandler) UpdateTierHandler(c *gin.Context) {
	accountID := middleware.AccountID(c)

	var req models.UpdateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid tier payload: "+err.Error(), nil)
		return
	}

	account, err := h.accountService.ChangeTier(accountID, req.Tier)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownTier):
			utils.SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("Unknown subscription tier '%s'.", req.Tier), nil)
		case errors.Is(err, services.ErrAccountNotFound):
			utils.SendJSONError(c, http.StatusNotFound, "Account not found.", nil)
		default:
			utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		}
		return
	}

	c.JSON(http.StatusOK, account)
}

// EmbedSnippetHandler returns the widget snippet an account holder pastes
// into their website.
func (h *APIHandler) EmbedSnippetHandler(c *gin.Context) {
	accountID := middleware.AccountID(c)
	baseURL := config.AppConfig.Server.BaseURL

	snippet := fmt.Sprintf(`<!-- Contact Form Widget -->
<div id="contact-form-widget"></div>
<script src="%s/widget.js"></script>
<script>
  ContactForm.init({
    accountId: '%s',
    endpoint: '%s/api/forms/%s/submissions',
    container: '#contact-form-widget'
  });
</script>`, baseURL, accountID, baseURL, accountID)

	c.JSON(http.StatusOK, gin.H{"embed_code": snippet})
}

package models

import "time"

// Account is a tenant who owns an embeddable contact form. The tier and the
// monthly submission limit are mutated only by registration and tier switches,
// never by the submission flow.
type Account struct {
	ID                     string    `gorm:"primaryKey" json:"id"`
	Email                  string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash           string    `gorm:"not null" json:"-"`
	Name                   string    `json:"name"`
	SubscriptionTier       string    `gorm:"default:free" json:"subscription_tier"`
	MonthlySubmissionLimit int       `json:"monthly_submission_limit"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token            string `json:"token"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	SubscriptionTier string `json:"subscription_tier"`
}

type UpdateTierRequest struct {
	Tier string `json:"tier" binding:"required"`
}

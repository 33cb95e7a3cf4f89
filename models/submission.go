package models

import "time"

// Submission is one inbound message from a website visitor. The record is
// created exactly once by the admission flow and is immutable afterwards
// except for the is_read flag and the account holder's private notes.
type Submission struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	AccountID   string    `gorm:"index;not null" json:"account_id"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"not null" json:"email"`
	Phone       *string   `json:"phone,omitempty"`
	Company     *string   `json:"company,omitempty"`
	Message     string    `gorm:"not null" json:"message"`
	IsRead      bool      `gorm:"default:false" json:"is_read"`
	Notes       *string   `json:"notes,omitempty"`
	SubmittedAt time.Time `gorm:"index" json:"submitted_at"`
}

// TableName specifies the table name for the Submission model.
func (Submission) TableName() string {
	return "contact_submissions"
}

// SubmitRequest is the payload posted by the public embeddable form.
// Phone and company are optional and stored as NULL when blank.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// DashboardStats summarizes an account's current month for the dashboard
// header: usage against the limit plus the unread backlog.
type DashboardStats struct {
	SubscriptionTier       string    `json:"subscription_tier"`
	MonthlySubmissionLimit int       `json:"monthly_submission_limit"`
	Month                  time.Time `json:"month"`
	SubmissionCount        int       `json:"submission_count"`
	UnreadCount            int64     `json:"unread_count"`
}

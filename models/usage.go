package models

import "time"

// MonthlyUsage counts accepted submissions per account and calendar month.
// One row exists per (account, month) pair, created lazily on the first
// accepted submission of the month. The count is never decremented: deleting
// a submission does not refund quota.
type MonthlyUsage struct {
	AccountID       string    `gorm:"primaryKey" json:"account_id"`
	Month           time.Time `gorm:"primaryKey" json:"month"`
	SubmissionCount int       `gorm:"default:0" json:"submission_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for the MonthlyUsage model.
func (MonthlyUsage) TableName() string {
	return "monthly_usage"
}

// MonthKey truncates t to the first day of its calendar month at midnight UTC.
// UTC is the reference zone for usage bucketing so counters are stable across
// deployments.
func MonthKey(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

package repository

import (
	"errors"
	"fmt"
	"log"
	"time"

	"formharbor/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRepository defines the interface for interacting with monthly usage
// counters. The month argument must already be normalized to the first day of
// the month (see models.MonthKey).
type UsageRepository interface {
	GetUsage(accountID string, month time.Time) (*models.MonthlyUsage, error)
	IncrementUsage(accountID string, month time.Time) (*models.MonthlyUsage, error)
	ListForMonth(month time.Time) ([]*models.MonthlyUsage, error)
}

type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new instance of UsageRepository.
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// GetUsage retrieves the usage counter for an account and month. If no row
// exists yet, it returns a zero-count counter and no error: absence means no
// submissions have been accepted this month.
func (r *usageRepository) GetUsage(accountID string, month time.Time) (*models.MonthlyUsage, error) {
	if accountID == "" {
		return nil, errors.New("account ID cannot be empty")
	}

	var usage models.MonthlyUsage
	err := r.db.First(&usage, "account_id = ? AND month = ?", accountID, month).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.MonthlyUsage{AccountID: accountID, Month: month, SubmissionCount: 0}, nil
		}
		log.Printf("ERROR: [UsageRepository] Failed to fetch usage for account %s month %s: %v", accountID, month.Format("2006-01-02"), err)
		return nil, fmt.Errorf("failed to fetch usage for account %s: %w", accountID, err)
	}
	return &usage, nil
}

// IncrementUsage increments the submission count for an account and month.
// If no row exists, one is created with a count of 1. The increment runs as a
// single UPSERT so concurrent increments on the same row never lose counts.
// Not idempotent: callers must invoke it exactly once per accepted submission.
func (r *usageRepository) IncrementUsage(accountID string, month time.Time) (*models.MonthlyUsage, error) {
	if accountID == "" {
		return nil, errors.New("account ID cannot be empty")
	}

	now := time.Now().UTC()
	usageToUpsert := models.MonthlyUsage{
		AccountID:       accountID,
		Month:           month,
		SubmissionCount: 1, // value for the INSERT arm of the UPSERT
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"submission_count": gorm.Expr("submission_count + 1"),
			"updated_at":       now,
		}),
	}).Create(&usageToUpsert).Error
	if err != nil {
		log.Printf("ERROR: [UsageRepository] Failed to increment usage for account %s month %s: %v", accountID, month.Format("2006-01-02"), err)
		return nil, fmt.Errorf("failed to increment usage for account %s: %w", accountID, err)
	}

	// The struct is not updated with the incremented value when the row
	// already existed, so re-fetch to return the current state.
	var currentUsage models.MonthlyUsage
	if fetchErr := r.db.First(&currentUsage, "account_id = ? AND month = ?", accountID, month).Error; fetchErr != nil {
		log.Printf("ERROR: [UsageRepository] Failed to fetch usage for account %s after increment: %v", accountID, fetchErr)
		return nil, fmt.Errorf("failed to fetch usage for account %s after increment: %w", accountID, fetchErr)
	}

	log.Printf("INFO: [UsageRepository] Usage for account %s month %s is now %d.", accountID, month.Format("2006-01-02"), currentUsage.SubmissionCount)
	return &currentUsage, nil
}

// ListForMonth returns every usage counter recorded for a month. Used by the
// digest scheduler.
func (r *usageRepository) ListForMonth(month time.Time) ([]*models.MonthlyUsage, error) {
	var usages []*models.MonthlyUsage
	if err := r.db.Where("month = ?", month).Find(&usages).Error; err != nil {
		log.Printf("ERROR: [UsageRepository] Failed to list usage for month %s: %v", month.Format("2006-01-02"), err)
		return nil, fmt.Errorf("failed to list usage for month %s: %w", month.Format("2006-01-02"), err)
	}
	return usages, nil
}

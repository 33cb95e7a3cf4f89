package repository

import (
	"errors"
	"fmt"
	"log"

	"formharbor/models"

	"gorm.io/gorm"
)

// SubmissionRepository defines the interface for interacting with stored
// contact submissions.
type SubmissionRepository interface {
	Insert(submission *models.Submission) error
	GetByID(id string) (*models.Submission, error)
	ListByAccount(accountID string) ([]*models.Submission, error)
	SetRead(id string, read bool) error
	UpdateNotes(id string, notes *string) error
	Delete(id string) error
	CountUnread(accountID string) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new instance of SubmissionRepository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Insert(submission *models.Submission) error {
	if err := r.db.Create(submission).Error; err != nil {
		log.Printf("ERROR: [SubmissionRepository] Failed to insert submission for account %s: %v", submission.AccountID, err)
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

func (r *submissionRepository) GetByID(id string) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.First(&submission, "id = ?", id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("ERROR: [SubmissionRepository] Failed to fetch submission %s: %v", id, err)
		}
		return nil, fmt.Errorf("failed to fetch submission %s: %w", id, err)
	}
	return &submission, nil
}

// ListByAccount returns all submissions for an account, newest first.
func (r *submissionRepository) ListByAccount(accountID string) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := r.db.Where("account_id = ?", accountID).Order("submitted_at desc").Find(&submissions).Error
	if err != nil {
		log.Printf("ERROR: [SubmissionRepository] Failed to list submissions for account %s: %v", accountID, err)
		return nil, fmt.Errorf("failed to list submissions for account %s: %w", accountID, err)
	}
	return submissions, nil
}

func (r *submissionRepository) SetRead(id string, read bool) error {
	err := r.db.Model(&models.Submission{}).Where("id = ?", id).Update("is_read", read).Error
	if err != nil {
		log.Printf("ERROR: [SubmissionRepository] Failed to update read flag for submission %s: %v", id, err)
		return fmt.Errorf("failed to update read flag for submission %s: %w", id, err)
	}
	return nil
}

func (r *submissionRepository) UpdateNotes(id string, notes *string) error {
	err := r.db.Model(&models.Submission{}).Where("id = ?", id).Update("notes", notes).Error
	if err != nil {
		log.Printf("ERROR: [SubmissionRepository] Failed to update notes for submission %s: %v", id, err)
		return fmt.Errorf("failed to update notes for submission %s: %w", id, err)
	}
	return nil
}

func (r *submissionRepository) Delete(id string) error {
	if err := r.db.Delete(&models.Submission{}, "id = ?", id).Error; err != nil {
		log.Printf("ERROR: [SubmissionRepository] Failed to delete submission %s: %v", id, err)
		return fmt.Errorf("failed to delete submission %s: %w", id, err)
	}
	return nil
}

func (r *submissionRepository) CountUnread(accountID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Submission{}).
		Where("account_id = ? AND is_read = ?", accountID, false).
		Count(&count).Error
	if err != nil {
		log.Printf("ERROR: [SubmissionRepository] Failed to count unread submissions for account %s: %v", accountID, err)
		return 0, fmt.Errorf("failed to count unread submissions for account %s: %w", accountID, err)
	}
	return count, nil
}

package repository

import (
	"errors"
	"fmt"
	"log"

	"formharbor/models"

	"gorm.io/gorm"
)

// AccountRepository defines the interface for interacting with account data.
type AccountRepository interface {
	Create(account *models.Account) error
	GetByID(id string) (*models.Account, error)
	GetByEmail(email string) (*models.Account, error)
	UpdateTier(id string, tier string, limit int) error
	List() ([]*models.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(account *models.Account) error {
	if err := r.db.Create(account).Error; err != nil {
		log.Printf("ERROR: [AccountRepository] Failed to create account for email %s: %v", account.Email, err)
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by its id. gorm.ErrRecordNotFound is preserved
// in the wrapped error so callers can distinguish a missing account from a
// storage failure.
func (r *accountRepository) GetByID(id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, "id = ?", id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("ERROR: [AccountRepository] Failed to fetch account %s: %v", id, err)
		}
		return nil, fmt.Errorf("failed to fetch account %s: %w", id, err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, "email = ?", email).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("ERROR: [AccountRepository] Failed to fetch account by email %s: %v", email, err)
		}
		return nil, fmt.Errorf("failed to fetch account by email: %w", err)
	}
	return &account, nil
}

// UpdateTier sets the subscription tier and the matching monthly submission
// limit in one update. Used by the tier-switch action only; the admission
// flow never mutates accounts.
func (r *accountRepository) UpdateTier(id string, tier string, limit int) error {
	result := r.db.Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"subscription_tier":        tier,
		"monthly_submission_limit": limit,
	})
	if result.Error != nil {
		log.Printf("ERROR: [AccountRepository] Failed to update tier for account %s: %v", id, result.Error)
		return fmt.Errorf("failed to update tier for account %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update tier for account %s: %w", id, gorm.ErrRecordNotFound)
	}
	log.Printf("INFO: [AccountRepository] Account %s switched to tier '%s' (limit %d).", id, tier, limit)
	return nil
}

func (r *accountRepository) List() ([]*models.Account, error) {
	var accounts []*models.Account
	if err := r.db.Find(&accounts).Error; err != nil {
		log.Printf("ERROR: [AccountRepository] Failed to list accounts: %v", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

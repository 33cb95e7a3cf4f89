package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"formharbor/models"
	"formharbor/repository"

	"gorm.io/gorm"
)

// QuotaDecision is the outcome of an admission check. MonthKey is the usage
// bucket the check ran against; callers must record usage against the same
// key so a submission never lands in a different bucket than the one checked.
type QuotaDecision struct {
	Admitted bool
	MonthKey time.Time
	Count    int
	Limit    int
}

// QuotaService gates form submissions against an account's monthly limit and
// records accepted submissions in the usage ledger.
type QuotaService interface {
	// CheckAndReserve decides whether a submission at time now may be
	// admitted. It is a read-only check: no counter is mutated. A refusal is
	// reported in the decision, not as an error; errors indicate a missing
	// account or a storage failure, which are distinct conditions.
	CheckAndReserve(accountID string, now time.Time) (*QuotaDecision, error)

	// RecordUsage increments the usage counter for the given month bucket.
	// Must be called exactly once per accepted submission; it is not
	// idempotent and double-counts when called twice.
	RecordUsage(accountID string, monthKey time.Time) (*models.MonthlyUsage, error)
}

type quotaService struct {
	usageRepo   repository.UsageRepository
	accountRepo repository.AccountRepository
}

// NewQuotaService creates a new instance of QuotaService.
func NewQuotaService(usageRepo repository.UsageRepository, accountRepo repository.AccountRepository) QuotaService {
	return &quotaService{usageRepo: usageRepo, accountRepo: accountRepo}
}

func (s *quotaService) CheckAndReserve(accountID string, now time.Time) (*QuotaDecision, error) {
	monthKey := models.MonthKey(now)

	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("WARN: [QuotaService] Admission check for unknown account %s refused.", accountID)
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("quota check failed for account %s: %w", accountID, err)
	}

	usage, err := s.usageRepo.GetUsage(accountID, monthKey)
	if err != nil {
		return nil, fmt.Errorf("quota check failed for account %s: %w", accountID, err)
	}

	decision := &QuotaDecision{
		MonthKey: monthKey,
		Count:    usage.SubmissionCount,
		Limit:    account.MonthlySubmissionLimit,
	}
	decision.Admitted = usage.SubmissionCount < account.MonthlySubmissionLimit
	if !decision.Admitted {
		log.Printf("INFO: [QuotaService] Account %s refused: %d/%d submissions used for month %s.",
			accountID, usage.SubmissionCount, account.MonthlySubmissionLimit, monthKey.Format("2006-01"))
	}
	return decision, nil
}

func (s *quotaService) RecordUsage(accountID string, monthKey time.Time) (*models.MonthlyUsage, error) {
	return s.usageRepo.IncrementUsage(accountID, monthKey)
}

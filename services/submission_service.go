package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"formharbor/models"
	"formharbor/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SubmissionService orchestrates the submission admission flow and the
// dashboard operations on stored submissions.
type SubmissionService interface {
	// Submit runs the admission flow: validate, check quota, persist the
	// submission, record usage. On refusal or validation failure nothing is
	// written.
	Submit(accountID string, req models.SubmitRequest, now time.Time) (*models.Submission, error)

	ListForAccount(accountID string) ([]*models.Submission, error)
	Get(accountID, submissionID string) (*models.Submission, error)
	ToggleRead(accountID, submissionID string) (*models.Submission, error)
	UpdateNotes(accountID, submissionID, notes string) (*models.Submission, error)
	Delete(accountID, submissionID string) error
	Stats(accountID string, now time.Time) (*models.DashboardStats, error)
}

type submissionService struct {
	submissionRepo repository.SubmissionRepository
	accountRepo    repository.AccountRepository
	quota          QuotaService
	notifier       Notifier // optional; nil disables email alerts

	// admissionLocks serializes the check-insert-increment sequence per
	// account. Without it two near-simultaneous submissions can both read
	// count == limit-1 and both be admitted, pushing usage past the limit.
	admissionLocks sync.Map
}

// NewSubmissionService creates a new instance of SubmissionService. notifier
// may be nil, in which case no submission alert emails are sent.
func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	accountRepo repository.AccountRepository,
	quota QuotaService,
	notifier Notifier,
) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		accountRepo:    accountRepo,
		quota:          quota,
		notifier:       notifier,
	}
}

func (s *submissionService) accountLock(accountID string) *sync.Mutex {
	lock, _ := s.admissionLocks.LoadOrStore(accountID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *submissionService) Submit(accountID string, req models.SubmitRequest, now time.Time) (*models.Submission, error) {
	if verr := validateSubmitRequest(req); verr != nil {
		return nil, verr
	}

	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	decision, err := s.quota.CheckAndReserve(accountID, now)
	if err != nil {
		return nil, err
	}
	if !decision.Admitted {
		return nil, ErrQuotaExceeded
	}

	submission := &models.Submission{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Phone:       optionalField(req.Phone),
		Company:     optionalField(req.Company),
		Message:     strings.TrimSpace(req.Message),
		IsRead:      false,
		SubmittedAt: now,
	}

	if err := s.submissionRepo.Insert(submission); err != nil {
		// No usage is recorded for a submission that was never persisted.
		return nil, err
	}

	// Record against the same month bucket the check ran on.
	if _, err := s.quota.RecordUsage(accountID, decision.MonthKey); err != nil {
		// The submission is already persisted; failing the request now would
		// mislead the visitor. The counter undercounts instead, which never
		// over-admits.
		log.Printf("ERROR: [SubmissionService] Usage not recorded for submission %s (account %s): %v", submission.ID, accountID, err)
	}

	log.Printf("INFO: [SubmissionService] Submission %s accepted for account %s (%d/%d this month).",
		submission.ID, accountID, decision.Count+1, decision.Limit)

	if s.notifier != nil {
		go s.sendAlert(accountID, submission)
	}

	return submission, nil
}

// sendAlert emails the account holder about a new submission. Best effort:
// alert failures never affect an already-accepted submission.
func (s *submissionService) sendAlert(accountID string, submission *models.Submission) {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		log.Printf("WARN: [SubmissionService] Could not load account %s for submission alert: %v", accountID, err)
		return
	}
	if err := s.notifier.SendSubmissionAlert(account, submission); err != nil {
		log.Printf("WARN: [SubmissionService] Submission alert for account %s failed: %v", accountID, err)
	}
}

func (s *submissionService) ListForAccount(accountID string) ([]*models.Submission, error) {
	return s.submissionRepo.ListByAccount(accountID)
}

// Get returns a submission owned by the account. Submissions belonging to
// other accounts are reported as not found, never leaked.
func (s *submissionService) Get(accountID, submissionID string) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	if submission.AccountID != accountID {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *submissionService) ToggleRead(accountID, submissionID string) (*models.Submission, error) {
	submission, err := s.Get(accountID, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.submissionRepo.SetRead(submissionID, !submission.IsRead); err != nil {
		return nil, err
	}
	submission.IsRead = !submission.IsRead
	return submission, nil
}

func (s *submissionService) UpdateNotes(accountID, submissionID, notes string) (*models.Submission, error) {
	submission, err := s.Get(accountID, submissionID)
	if err != nil {
		return nil, err
	}
	normalized := optionalField(notes)
	if err := s.submissionRepo.UpdateNotes(submissionID, normalized); err != nil {
		return nil, err
	}
	submission.Notes = normalized
	return submission, nil
}

// Delete removes a submission. The month's usage counter is deliberately left
// untouched: deletion does not refund quota.
func (s *submissionService) Delete(accountID, submissionID string) error {
	if _, err := s.Get(accountID, submissionID); err != nil {
		return err
	}
	return s.submissionRepo.Delete(submissionID)
}

func (s *submissionService) Stats(accountID string, now time.Time) (*models.DashboardStats, error) {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	decision, err := s.quota.CheckAndReserve(accountID, now)
	if err != nil {
		return nil, err
	}

	unread, err := s.submissionRepo.CountUnread(accountID)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		SubscriptionTier:       account.SubscriptionTier,
		MonthlySubmissionLimit: account.MonthlySubmissionLimit,
		Month:                  decision.MonthKey,
		SubmissionCount:        decision.Count,
		UnreadCount:            unread,
	}, nil
}

func validateSubmitRequest(req models.SubmitRequest) *ValidationError {
	if strings.TrimSpace(req.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Reason: fmt.Sprintf("'%s' is not a valid email address", email)}
	}
	if strings.TrimSpace(req.Message) == "" {
		return &ValidationError{Field: "message", Reason: "must not be empty"}
	}
	return nil
}

// optionalField normalizes an optional form field: blank values are stored as
// NULL, not as empty strings.
func optionalField(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"formharbor/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// Stateful in-memory stores for concurrency tests: unlike the testify mocks,
// these carry real counter state so interleaved admissions arbitrate against
// a live count, the way the database would.

type fakeAccountStore struct {
	account *models.Account
}

func (f *fakeAccountStore) Create(account *models.Account) error { return nil }
func (f *fakeAccountStore) GetByID(id string) (*models.Account, error) {
	if f.account == nil || f.account.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.account, nil
}
func (f *fakeAccountStore) GetByEmail(email string) (*models.Account, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeAccountStore) UpdateTier(id string, tier string, limit int) error { return nil }
func (f *fakeAccountStore) List() ([]*models.Account, error) {
	return []*models.Account{f.account}, nil
}

type fakeUsageStore struct {
	mu     sync.Mutex
	counts map[string]int // accountID|monthKey -> submission_count
}

func newFakeUsageStore() *fakeUsageStore {
	return &fakeUsageStore{counts: make(map[string]int)}
}

func usageKey(accountID string, month time.Time) string {
	return accountID + "|" + month.Format("2006-01-02")
}

func (f *fakeUsageStore) GetUsage(accountID string, month time.Time) (*models.MonthlyUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.MonthlyUsage{
		AccountID:       accountID,
		Month:           month,
		SubmissionCount: f.counts[usageKey(accountID, month)],
	}, nil
}

func (f *fakeUsageStore) IncrementUsage(accountID string, month time.Time) (*models.MonthlyUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := usageKey(accountID, month)
	f.counts[key]++
	return &models.MonthlyUsage{
		AccountID:       accountID,
		Month:           month,
		SubmissionCount: f.counts[key],
	}, nil
}

func (f *fakeUsageStore) ListForMonth(month time.Time) ([]*models.MonthlyUsage, error) {
	return nil, nil
}

func (f *fakeUsageStore) count(accountID string, month time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[usageKey(accountID, month)]
}

type fakeSubmissionStore struct {
	mu   sync.Mutex
	rows []*models.Submission
}

func (f *fakeSubmissionStore) Insert(submission *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, submission)
	return nil
}
func (f *fakeSubmissionStore) GetByID(id string) (*models.Submission, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeSubmissionStore) ListByAccount(accountID string) ([]*models.Submission, error) {
	return nil, nil
}
func (f *fakeSubmissionStore) SetRead(id string, read bool) error { return nil }
func (f *fakeSubmissionStore) UpdateNotes(id string, notes *string) error { return nil }
func (f *fakeSubmissionStore) Delete(id string) error { return nil }
func (f *fakeSubmissionStore) CountUnread(accountID string) (int64, error) {
	return 0, nil
}

func (f *fakeSubmissionStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// Concurrent admissions for one account must never admit past the limit:
// without the per-account serialization, several goroutines can read
// count == limit-1 simultaneously and all be admitted.
func TestSubmitConcurrentAdmissionsRespectLimit(t *testing.T) {
	const limit = 5
	const attempts = 40

	accountStore := &fakeAccountStore{account: &models.Account{ID: "acct-1", MonthlySubmissionLimit: limit}}
	usageStore := newFakeUsageStore()
	submissionStore := &fakeSubmissionStore{}

	quota := NewQuotaService(usageStore, accountStore)
	service := NewSubmissionService(submissionStore, accountStore, quota, nil)

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	monthKey := models.MonthKey(now)

	var wg sync.WaitGroup
	var admitted, refused int64
	var mu sync.Mutex

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Submit("acct-1", validRequest(), now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, ErrQuotaExceeded):
				refused++
			default:
				t.Errorf("unexpected submit error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), admitted)
	assert.Equal(t, int64(attempts-limit), refused)
	// The counter matches the rows actually persisted, exactly at the limit.
	assert.Equal(t, limit, usageStore.count("acct-1", monthKey))
	assert.Equal(t, limit, submissionStore.len())
}

// Admissions for different accounts must not serialize against each other's
// counters: each account fills its own quota independently.
func TestSubmitConcurrentAccountsAreIndependent(t *testing.T) {
	const limit = 3

	// Two accounts behind one store.
	accounts := map[string]*models.Account{
		"acct-a": {ID: "acct-a", MonthlySubmissionLimit: limit},
		"acct-b": {ID: "acct-b", MonthlySubmissionLimit: limit},
	}
	accountStore := &multiAccountStore{accounts: accounts}
	usageStore := newFakeUsageStore()
	submissionStore := &fakeSubmissionStore{}

	quota := NewQuotaService(usageStore, accountStore)
	service := NewSubmissionService(submissionStore, accountStore, quota, nil)

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	monthKey := models.MonthKey(now)

	var wg sync.WaitGroup
	for _, id := range []string{"acct-a", "acct-b"} {
		for i := 0; i < limit*2; i++ {
			wg.Add(1)
			go func(accountID string) {
				defer wg.Done()
				service.Submit(accountID, validRequest(), now)
			}(id)
		}
	}
	wg.Wait()

	assert.Equal(t, limit, usageStore.count("acct-a", monthKey))
	assert.Equal(t, limit, usageStore.count("acct-b", monthKey))
	assert.Equal(t, limit*2, submissionStore.len())
}

type multiAccountStore struct {
	accounts map[string]*models.Account
}

func (f *multiAccountStore) Create(account *models.Account) error { return nil }
func (f *multiAccountStore) GetByID(id string) (*models.Account, error) {
	if account, ok := f.accounts[id]; ok {
		return account, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *multiAccountStore) GetByEmail(email string) (*models.Account, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *multiAccountStore) UpdateTier(id string, tier string, limit int) error { return nil }
func (f *multiAccountStore) List() ([]*models.Account, error) { return nil, nil }

package scheduler

import (
	"log"
	"time"

	"formharbor/models"
	"formharbor/repository"
	"formharbor/services"

	"github.com/robfig/cron/v3"
)

// DigestScheduler periodically emails every account holder a summary of
// unread submissions and current month usage.
type DigestScheduler struct {
	cron           *cron.Cron
	accountRepo    repository.AccountRepository
	submissionRepo repository.SubmissionRepository
	usageRepo      repository.UsageRepository
	notifier       services.Notifier
}

// NewDigestScheduler creates a new DigestScheduler.
func NewDigestScheduler(
	accountRepo repository.AccountRepository,
	submissionRepo repository.SubmissionRepository,
	usageRepo repository.UsageRepository,
	notifier services.Notifier,
) *DigestScheduler {
	return &DigestScheduler{
		cron:           cron.New(),
		accountRepo:    accountRepo,
		submissionRepo: submissionRepo,
		usageRepo:      usageRepo,
		notifier:       notifier,
	}
}

// Start schedules the digest run. schedule is a cron spec, e.g. "0 9 * * MON".
func (s *DigestScheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		log.Printf("INFO: [Scheduler] Starting digest run (schedule: %s).", schedule)
		s.RunDigest(time.Now())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("INFO: [Scheduler] Digest scheduler started with schedule '%s'.", schedule)
	return nil
}

func (s *DigestScheduler) Stop() {
	s.cron.Stop()
}

// RunDigest sends one digest email per account. Failures for one account are
// logged and do not stop the run.
func (s *DigestScheduler) RunDigest(now time.Time) {
	accounts, err := s.accountRepo.List()
	if err != nil {
		log.Printf("ERROR: [Scheduler] Digest run aborted, could not list accounts: %v", err)
		return
	}

	monthKey := models.MonthKey(now)
	sent := 0
	for _, account := range accounts {
		unread, err := s.submissionRepo.CountUnread(account.ID)
		if err != nil {
			log.Printf("WARN: [Scheduler] Skipping digest for account %s: %v", account.ID, err)
			continue
		}
		usage, err := s.usageRepo.GetUsage(account.ID, monthKey)
		if err != nil {
			log.Printf("WARN: [Scheduler] Skipping digest for account %s: %v", account.ID, err)
			continue
		}
		if err := s.notifier.SendDigest(account, unread, usage); err != nil {
			log.Printf("WARN: [Scheduler] Digest email for account %s failed: %v", account.ID, err)
			continue
		}
		sent++
	}
	log.Printf("INFO: [Scheduler] Digest run complete: %d/%d emails sent.", sent, len(accounts))
}

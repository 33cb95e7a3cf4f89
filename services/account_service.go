package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"formharbor/config"
	"formharbor/models"
	"formharbor/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountService handles registration, login and subscription tier switches.
type AccountService interface {
	Register(req models.RegisterRequest) (*models.Account, error)
	Login(creds models.Credentials) (string, *models.Account, error)
	ChangeTier(accountID, tier string) (*models.Account, error)
	Get(accountID string) (*models.Account, error)
}

type accountService struct {
	accountRepo repository.AccountRepository
	jwtSecret   []byte
	tokenTTL    time.Duration
}

// NewAccountService creates a new instance of AccountService.
func NewAccountService(accountRepo repository.AccountRepository, jwtSecret []byte, tokenTTL time.Duration) AccountService {
	return &accountService{accountRepo: accountRepo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates an account on the default tier with its configured
// monthly submission limit.
func (s *accountService) Register(req models.RegisterRequest) (*models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.accountRepo.GetByEmail(email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	limit, ok := config.LimitForTier(config.DefaultTier)
	if !ok {
		return nil, fmt.Errorf("tier catalog is missing the default tier '%s'", config.DefaultTier)
	}

	account := &models.Account{
		ID:                     uuid.NewString(),
		Email:                  email,
		PasswordHash:           string(hash),
		Name:                   strings.TrimSpace(req.Name),
		SubscriptionTier:       config.DefaultTier,
		MonthlySubmissionLimit: limit,
	}
	if err := s.accountRepo.Create(account); err != nil {
		return nil, err
	}

	log.Printf("INFO: [AccountService] Registered account %s (%s) on tier '%s'.", account.ID, account.Email, account.SubscriptionTier)
	return account, nil
}

// Login verifies credentials and issues a signed JWT whose subject is the
// account id.
func (s *accountService) Login(creds models.Credentials) (string, *models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))

	account, err := s.accountRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"tier":  account.SubscriptionTier,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, account, nil
}

// ChangeTier switches an account to a cataloged tier, setting the matching
// monthly submission limit in the same update. Usage already recorded this
// month is unaffected; only future admission checks see the new limit.
func (s *accountService) ChangeTier(accountID, tier string) (*models.Account, error) {
	limit, ok := config.LimitForTier(tier)
	if !ok {
		return nil, ErrUnknownTier
	}

	if err := s.accountRepo.UpdateTier(accountID, tier, limit); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return s.Get(accountID)
}

func (s *accountService) Get(accountID string) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

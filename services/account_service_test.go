package services

import (
	"testing"
	"time"

	"formharbor/config"
	"formharbor/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testSecret = []byte("test-secret")

func setTierCatalog() {
	config.AppConfig.Tiers = map[string]int{
		"free":       25,
		"pro":        100,
		"enterprise": 999999,
	}
}

func TestRegisterAssignsFreeTierLimit(t *testing.T) {
	setTierCatalog()
	accountRepo := new(MockAccountRepository)
	service := NewAccountService(accountRepo, testSecret, time.Hour)

	accountRepo.On("GetByEmail", "new@example.com").Return(nil, gorm.ErrRecordNotFound)

	var created *models.Account
	accountRepo.On("Create", mock.AnythingOfType("*models.Account")).Run(func(args mock.Arguments) {
		created = args.Get(0).(*models.Account)
	}).Return(nil)

	account, err := service.Register(models.RegisterRequest{
		Name:     "New User",
		Email:    "New@Example.com",
		Password: "correct horse battery",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "new@example.com", account.Email)
	assert.Equal(t, "free", account.SubscriptionTier)
	assert.Equal(t, 25, account.MonthlySubmissionLimit)
	// The stored hash must verify against the original password.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct horse battery")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	setTierCatalog()
	accountRepo := new(MockAccountRepository)
	service := NewAccountService(accountRepo, testSecret, time.Hour)

	accountRepo.On("GetByEmail", "taken@example.com").Return(&models.Account{ID: "acct-1", Email: "taken@example.com"}, nil)

	account, err := service.Register(models.RegisterRequest{
		Name:     "Someone",
		Email:    "taken@example.com",
		Password: "whatever-else",
	})

	assert.Nil(t, account)
	assert.ErrorIs(t, err, ErrEmailTaken)
	accountRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestLoginIssuesTokenWithAccountSubject(t *testing.T) {
	setTierCatalog()
	accountRepo := new(MockAccountRepository)
	service := NewAccountService(accountRepo, testSecret, time.Hour)

	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.DefaultCost)
	accountRepo.On("GetByEmail", "owner@example.com").Return(&models.Account{
		ID:               "acct-1",
		Email:            "owner@example.com",
		PasswordHash:     string(hash),
		SubscriptionTier: "pro",
	}, nil)

	token, account, err := service.Login(models.Credentials{Email: "owner@example.com", Password: "hunter2hunter2"})

	assert.NoError(t, err)
	assert.Equal(t, "acct-1", account.ID)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) { return testSecret, nil })
	assert.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "acct-1", claims["sub"])
	assert.Equal(t, "pro", claims["tier"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	setTierCatalog()
	accountRepo := new(MockAccountRepository)
	service := NewAccountService(accountRepo, testSecret, time.Hour)

	hash, _ := bcrypt.GenerateFromPassword([]byte("the-real-one"), bcrypt.DefaultCost)
	accountRepo.On("GetByEmail", "owner@example.com").Return(&models.Account{
		ID: "acct-1", Email: "owner@example.com", PasswordHash: string(hash),
	}, nil)

	token, account, err := service.Login(models.Credentials{Email: "owner@example.com", Password: "a-guess"})

	assert.Empty(t, token)
	assert.Nil(t, account)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	setTierCatalog()
	accountRepo := new(MockAccountRepository)
	service := NewAccountService(accountRepo, testSecret, time.Hour)

	accountRepo.On("GetByEmail", "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, _, err := service.Login(models.Credentials{Email: "ghost@example.com", Password: "anything-at-all"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangeTierSetsMatchingLimit(t *testing.T) {
	setTierCatalog()
	accountRepo := new(MockAccountRepository)
	service := NewAccountService(accountRepo, testSecret, time.Hour)

	accountRepo.On("UpdateTier", "acct-1", "pro", 100).Return(nil)
	accountRepo.On("GetByID", "acct-1").Return(&models.Account{
		ID: "acct-1", SubscriptionTier: "pro", MonthlySubmissionLimit: 100,
	}, nil)

	account, err := service.ChangeTier("acct-1", "pro")

	assert.NoError(t, err)
	assert.Equal(t, "pro", account.SubscriptionTier)
	assert.Equal(t, 100, account.MonthlySubmissionLimit)
	accountRepo.AssertExpectations(t)
}

func TestChangeTierRejectsUnknownTier(t *testing.T) {
	setTierCatalog()
	accountRepo := new(MockAccountRepository)
	service := NewAccountService(accountRepo, testSecret, time.Hour)

	account, err := service.ChangeTier("acct-1", "platinum")

	assert.Nil(t, account)
	assert.ErrorIs(t, err, ErrUnknownTier)
	accountRepo.AssertNotCalled(t, "UpdateTier", mock.Anything, mock.Anything, mock.Anything)
}

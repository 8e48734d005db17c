package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-onboarding/pkg/notification"
	"github.com/tendant/simple-onboarding/pkg/signup"
	apperrors "github.com/tendant/simple-onboarding/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// WelcomeSender delivers the welcome notice after an account is created.
type WelcomeSender interface {
	Send(ctx context.Context, noticeType notification.NoticeType, data notification.NotificationData) error
}

// Service creates accounts from completed signups. It satisfies
// signup.Finalizer.
type Service struct {
	repo       Repository
	welcome    WelcomeSender
	bcryptCost int
	now        func() time.Time
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithWelcomeSender sends a welcome notice for every new account
func WithWelcomeSender(w WelcomeSender) Option {
	return func(s *Service) {
		s.welcome = w
	}
}

// WithBcryptCost overrides bcrypt.DefaultCost
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ signup.Finalizer = (*Service)(nil)

func (s *Service) CreateAccount(ctx context.Context, data signup.CompleteSignupData) (*signup.AccountResult, error) {
	email := strings.ToLower(strings.TrimSpace(data.Email))

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperrors.New(apperrors.ErrCodeUserAlreadyExists, "an account with this email already exists")
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, apperrors.InternalWrap(err, "failed to look up account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to hash password")
	}

	account := &Account{}
	if err := copier.Copy(account, &data); err != nil {
		return nil, apperrors.InternalWrap(err, "failed to build account")
	}
	account.ID = uuid.New()
	account.Email = email
	account.PasswordHash = hash
	account.CreatedAt = s.now().UTC()

	// Hashing is slow; the caller may have given up meanwhile.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, apperrors.New(apperrors.ErrCodeUserAlreadyExists, "an account with this email already exists")
		}
		return nil, apperrors.InternalWrap(err, "failed to create account")
	}
	slog.Info("Account created", "account_id", account.ID, "account_type", account.AccountType)

	s.sendWelcome(ctx, account)

	return &signup.AccountResult{
		AccountID:   account.ID.String(),
		Email:       account.Email,
		AccountType: account.AccountType,
		CreatedAt:   account.CreatedAt,
	}, nil
}

// sendWelcome is best effort; the account already exists.
func (s *Service) sendWelcome(ctx context.Context, account *Account) {
	if s.welcome == nil {
		return
	}

	noticeType := notification.WelcomeFreelancer
	if account.AccountType == signup.AccountTypeClient {
		noticeType = notification.WelcomeClient
	}

	err := s.welcome.Send(ctx, noticeType, notification.NotificationData{
		To: account.Email,
		Data: map[string]string{
			"FirstName":      account.FirstName,
			"LastName":       account.LastName,
			"CompanyName":    account.CompanyName,
			"Specialization": account.Specialization,
			"Skills":         strings.Join(account.Skills, ", "),
		},
	})
	if err != nil {
		slog.Warn("Failed to send welcome email", "account_id", account.ID, "error", err)
	}
}

package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-onboarding/pkg/signup"
)

// Account is a created marketplace account.
type Account struct {
	ID             uuid.UUID
	Email          string
	PasswordHash   []byte
	FirstName      string
	LastName       string
	AccountType    signup.AccountType
	MarketingOptIn bool
	JobTitle       string
	Specialization string
	CompanyName    string
	Skills         []string
	CreatedAt      time.Time
}

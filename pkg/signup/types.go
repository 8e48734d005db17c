package signup

import (
	"fmt"
	"time"
)

// Route names a page transition in the signup flow.
type Route string

const (
	RouteSignup        Route = "/signup"
	RouteSignupDetails Route = "/signup-details"
	RouteAccountType   Route = "/account-type"
)

// AccountType is the role a prospective user signs up for.
type AccountType string

const (
	AccountTypeFreelancer AccountType = "freelancer"
	AccountTypeClient     AccountType = "client"
)

// ParseAccountType accepts only the two known account types.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case AccountTypeFreelancer, AccountTypeClient:
		return AccountType(s), nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// SignupDraft is the step-1 record persisted in the draft store.
// JSON names match the record shape the browser client writes.
type SignupDraft struct {
	FirstName       string      `json:"firstName" validate:"required,max=80"`
	LastName        string      `json:"lastName" validate:"required,max=80"`
	Email           string      `json:"email" validate:"required,email,max=255"`
	Password        string      `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string      `json:"confirmPassword" validate:"required,eqfield=Password"`
	AccountType     AccountType `json:"accountType" validate:"required,oneof=freelancer client"`
	TermsAccepted   bool        `json:"termsAccepted" validate:"required"`
	MarketingOptIn  bool        `json:"marketingOptIn"`
}

// Redacted returns a copy safe to send back to the browser.
func (d SignupDraft) Redacted() SignupDraft {
	d.Password = ""
	d.ConfirmPassword = ""
	return d
}

// DetailsDraft is the step-2 record. It is never persisted on its own.
// For clients, Skills holds the services they need.
type DetailsDraft struct {
	JobTitle       string   `json:"jobTitle"`
	Specialization string   `json:"specialization"`
	CompanyName    string   `json:"companyName"`
	Skills         []string `json:"skills"`
}

// CompleteSignupData is the merged record handed to the Finalizer.
type CompleteSignupData struct {
	SignupDraft
	DetailsDraft
}

// Merge combines both drafts. Skills are copied so the result does not alias the caller's slice.
func Merge(s SignupDraft, d DetailsDraft) CompleteSignupData {
	skills := make([]string, len(d.Skills))
	copy(skills, d.Skills)
	d.Skills = skills
	return CompleteSignupData{SignupDraft: s, DetailsDraft: d}
}

// AccountResult is what the account collaborator returns on success.
type AccountResult struct {
	AccountID   string      `json:"accountId"`
	Email       string      `json:"email"`
	AccountType AccountType `json:"accountType"`
	CreatedAt   time.Time   `json:"createdAt"`
}

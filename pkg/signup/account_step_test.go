package signup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-onboarding/pkg/draftstore"
	apperrors "github.com/tendant/simple-onboarding/pkg/errors"
)

func validDraft(accountType AccountType) SignupDraft {
	return SignupDraft{
		FirstName:       "Ana",
		LastName:        "Silva",
		Email:           "ana@example.com",
		Password:        "s3cretpass",
		ConfirmPassword: "s3cretpass",
		AccountType:     accountType,
		TermsAccepted:   true,
	}
}

func TestAccountStep_SubmitSavesDraft(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	step := NewAccountStep(store)
	ctx := context.Background()

	draft := validDraft(AccountTypeFreelancer)
	draft.Email = "  Ana@Example.com "

	next, err := step.Submit(ctx, "session-1", draft)
	require.NoError(t, err)
	assert.Equal(t, RouteSignupDetails, next)

	var saved SignupDraft
	require.NoError(t, draftstore.LoadJSON(ctx, store, "session-1", draftstore.SignupKey, &saved))
	assert.Equal(t, "ana@example.com", saved.Email)
	assert.Equal(t, AccountTypeFreelancer, saved.AccountType)
	assert.Equal(t, "s3cretpass", saved.Password)
}

func TestAccountStep_SubmitRejectsInvalid(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	step := NewAccountStep(store)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SignupDraft)
		field  string
	}{
		{"missing first name", func(d *SignupDraft) { d.FirstName = "" }, "firstName"},
		{"bad email", func(d *SignupDraft) { d.Email = "not-an-email" }, "email"},
		{"short password", func(d *SignupDraft) { d.Password = "short"; d.ConfirmPassword = "short" }, "password"},
		{"passwords differ", func(d *SignupDraft) { d.ConfirmPassword = "different1" }, "confirmPassword"},
		{"terms not accepted", func(d *SignupDraft) { d.TermsAccepted = false }, "termsAccepted"},
		{"unknown account type", func(d *SignupDraft) { d.AccountType = "agency" }, "accountType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft(AccountTypeClient)
			tt.mutate(&draft)

			_, err := step.Submit(ctx, "session-x", draft)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidationFailed))
			assert.Contains(t, apperrors.GetDetails(err), tt.field)

			_, err = store.Load(ctx, "session-x", draftstore.SignupKey)
			assert.ErrorIs(t, err, draftstore.ErrNotFound)
		})
	}
}

func TestValidateSignupDraft_Messages(t *testing.T) {
	draft := validDraft(AccountTypeClient)
	draft.ConfirmPassword = "nope-nope"
	draft.TermsAccepted = false

	details := apperrors.GetDetails(ValidateSignupDraft(draft))
	assert.Equal(t, "passwords do not match", details["confirmPassword"])
	assert.Equal(t, "must be accepted", details["termsAccepted"])
}

func TestAccountStep_Resume(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	step := NewAccountStep(store)
	ctx := context.Background()

	_, err := step.Resume(ctx, "session-1")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingDraft))

	_, err = step.Submit(ctx, "session-1", validDraft(AccountTypeClient))
	require.NoError(t, err)

	draft, err := step.Resume(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", draft.FirstName)
	assert.Empty(t, draft.Password)
	assert.Empty(t, draft.ConfirmPassword)
}

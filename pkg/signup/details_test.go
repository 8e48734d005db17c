package signup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-onboarding/pkg/draftstore"
	apperrors "github.com/tendant/simple-onboarding/pkg/errors"
)

// gatedFinalizer blocks every call until release is closed.
type gatedFinalizer struct {
	started chan CompleteSignupData
	release chan struct{}
	err     error
}

func newGatedFinalizer() *gatedFinalizer {
	return &gatedFinalizer{
		started: make(chan CompleteSignupData, 1),
		release: make(chan struct{}),
	}
}

func (f *gatedFinalizer) CreateAccount(ctx context.Context, data CompleteSignupData) (*AccountResult, error) {
	f.started <- data
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.release:
	}
	if f.err != nil {
		return nil, f.err
	}
	return &AccountResult{AccountID: "acc-1", Email: data.Email, AccountType: data.AccountType}, nil
}

func instantFinalizer(err error) Finalizer {
	return FinalizerFunc(func(ctx context.Context, data CompleteSignupData) (*AccountResult, error) {
		if err != nil {
			return nil, err
		}
		return &AccountResult{AccountID: "acc-1", Email: data.Email, AccountType: data.AccountType}, nil
	})
}

func seedDraft(t *testing.T, store draftstore.Store, sessionID string, draft SignupDraft) {
	t.Helper()
	require.NoError(t, draftstore.SaveJSON(context.Background(), store, sessionID, draftstore.SignupKey, draft))
}

func mount(t *testing.T, store draftstore.Store, f Finalizer, sessionID string) *DetailsController {
	t.Helper()
	page, redirect, err := MountDetails(context.Background(), store, f, sessionID)
	require.NoError(t, err)
	require.Empty(t, redirect)
	require.NotNil(t, page)
	return page
}

func TestMountDetails_WithoutDraftRedirects(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)

	page, redirect, err := MountDetails(context.Background(), store, instantFinalizer(nil), "session-1")
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Equal(t, RouteSignup, redirect)
}

func TestMountDetails_MalformedDraftRedirects(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	require.NoError(t, store.Save(context.Background(), "session-1", draftstore.SignupKey, []byte("garbage")))

	page, redirect, err := MountDetails(context.Background(), store, instantFinalizer(nil), "session-1")
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Equal(t, RouteSignup, redirect)
}

func TestMountDetails_OutdatedAccountTypeRedirects(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	require.NoError(t, store.Save(context.Background(), "session-1", draftstore.SignupKey, []byte(`{"accountType":"agency"}`)))

	page, redirect, err := MountDetails(context.Background(), store, instantFinalizer(nil), "session-1")
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Equal(t, RouteSignup, redirect)
}

func TestMountDetails_StartsEmpty(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	seedDraft(t, store, "session-1", validDraft(AccountTypeFreelancer))

	page := mount(t, store, instantFinalizer(nil), "session-1")
	view := page.View()

	assert.Equal(t, DetailsDraft{Skills: []string{}}, view.Details)
	assert.Equal(t, AccountTypeFreelancer, view.Variant.AccountType)
	assert.Equal(t, "Ana", view.Signup.FirstName)
	assert.Empty(t, view.Signup.Password)
	assert.False(t, view.CanSubmit)
	assert.False(t, view.Loading)
}

func TestDetailsController_FreelancerSkillGate(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	seedDraft(t, store, "session-1", validDraft(AccountTypeFreelancer))
	page := mount(t, store, instantFinalizer(nil), "session-1")

	skills := []string{"Web Development", "UI/UX Design", "SEO", "Data Analysis"}
	for i, skill := range skills {
		assert.Equal(t, i >= FreelancerMinSkills, page.CanSubmit(), "with %d skills", i)
		_, err := page.ToggleSkill(skill)
		require.NoError(t, err)
	}
	assert.True(t, page.CanSubmit())

	// Dropping back below the minimum disables submission again
	_, err := page.ToggleSkill("SEO")
	require.NoError(t, err)
	_, err = page.ToggleSkill("Data Analysis")
	require.NoError(t, err)
	assert.False(t, page.CanSubmit())

	_, err = page.Submit(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTooFewSkills))
	assert.Equal(t, 2, apperrors.GetDetails(err)["selected"])
	assert.Equal(t, FreelancerMinSkills, apperrors.GetDetails(err)["required"])

	// Draft is untouched by a gated submit
	_, err = store.Load(context.Background(), "session-1", draftstore.SignupKey)
	assert.NoError(t, err)
}

func TestDetailsController_ClientHasNoSkillGate(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	seedDraft(t, store, "session-1", validDraft(AccountTypeClient))
	page := mount(t, store, instantFinalizer(nil), "session-1")

	assert.True(t, page.CanSubmit())
}

func TestDetailsController_SetField(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	seedDraft(t, store, "session-1", validDraft(AccountTypeFreelancer))
	page := mount(t, store, instantFinalizer(nil), "session-1")

	require.NoError(t, page.SetField(FieldJobTitle, "Backend developer"))
	require.NoError(t, page.SetField(FieldSpecialization, "web-development"))
	assert.Equal(t, "Backend developer", page.Details().JobTitle)
	assert.Equal(t, "web-development", page.Details().Specialization)
	assert.Empty(t, page.MissingFields())

	err := page.SetField(FieldCompanyName, "Acme")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnknownField))

	err = page.SetField(FieldSpecialization, "technology")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))

	require.NoError(t, page.SetField(FieldJobTitle, ""))
	assert.Equal(t, []string{FieldJobTitle}, page.MissingFields())
}

func TestDetailsController_ToggleUnknownTag(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	seedDraft(t, store, "session-1", validDraft(AccountTypeFreelancer))
	page := mount(t, store, instantFinalizer(nil), "session-1")

	_, err := page.ToggleSkill("Branding")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnknownTag))
	assert.Empty(t, page.Details().Skills)
}

func TestDetailsController_ClientSubmitClearsDraft(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	seedDraft(t, store, "session-1", validDraft(AccountTypeClient))

	var got CompleteSignupData
	finalizer := FinalizerFunc(func(ctx context.Context, data CompleteSignupData) (*AccountResult, error) {
		got = data
		return &AccountResult{AccountID: "acc-1"}, nil
	})
	page := mount(t, store, finalizer, "session-1")

	require.NoError(t, page.SetField(FieldCompanyName, "Acme"))
	require.NoError(t, page.SetField(FieldSpecialization, "technology"))
	_, err := page.ToggleSkill("SEO")
	require.NoError(t, err)
	_, err = page.ToggleSkill("Branding")
	require.NoError(t, err)

	next, err := page.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RouteAccountType, next)

	assert.Equal(t, AccountTypeClient, got.AccountType)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, "technology", got.Specialization)
	assert.Equal(t, []string{"SEO", "Branding"}, got.Skills)
	assert.Equal(t, "ana@example.com", got.Email)

	_, err = store.Load(context.Background(), "session-1", draftstore.SignupKey)
	assert.ErrorIs(t, err, draftstore.ErrNotFound)
}

func TestDetailsController_SubmitDisablesWhileInFlight(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	draft := validDraft(AccountTypeFreelancer)
	draft.FirstName = "Ana"
	seedDraft(t, store, "session-1", draft)

	finalizer := newGatedFinalizer()
	page := mount(t, store, finalizer, "session-1")
	for _, skill := range []string{"Web Development", "UI/UX Design", "SEO"} {
		_, err := page.ToggleSkill(skill)
		require.NoError(t, err)
	}
	require.True(t, page.CanSubmit())

	type outcome struct {
		next Route
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		next, err := page.Submit(context.Background())
		done <- outcome{next, err}
	}()

	data := <-finalizer.started
	assert.Equal(t, "Ana", data.FirstName)
	assert.False(t, page.CanSubmit())
	assert.True(t, page.Loading())
	assert.True(t, page.View().Loading)

	// A duplicate submission is refused while the first is pending
	_, err := page.Submit(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSubmissionInFlight))

	close(finalizer.release)
	result := <-done
	require.NoError(t, result.err)
	assert.Equal(t, RouteAccountType, result.next)
	assert.True(t, page.CanSubmit())
	assert.False(t, page.Loading())
}

func TestDetailsController_FailureKeepsDraft(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	original := validDraft(AccountTypeClient)
	seedDraft(t, store, "session-1", original)

	page := mount(t, store, instantFinalizer(errors.New("account service unavailable")), "session-1")

	_, err := page.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSubmissionFailed))
	assert.Equal(t, SubmissionErrorMessage, page.ErrorMessage())
	assert.Equal(t, SubmissionErrorMessage, page.View().Error)
	assert.True(t, page.CanSubmit())

	var kept SignupDraft
	require.NoError(t, draftstore.LoadJSON(context.Background(), store, "session-1", draftstore.SignupKey, &kept))
	assert.Equal(t, original, kept)
}

func TestDetailsController_RetryAfterFailureClearsError(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	seedDraft(t, store, "session-1", validDraft(AccountTypeClient))

	calls := 0
	finalizer := FinalizerFunc(func(ctx context.Context, data CompleteSignupData) (*AccountResult, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return &AccountResult{AccountID: "acc-2"}, nil
	})
	page := mount(t, store, finalizer, "session-1")

	_, err := page.Submit(context.Background())
	require.Error(t, err)

	next, err := page.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RouteAccountType, next)
	assert.Empty(t, page.ErrorMessage())
}

func TestDetailsController_DuplicateEmailIsPassedThrough(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	seedDraft(t, store, "session-1", validDraft(AccountTypeClient))

	dup := apperrors.New(apperrors.ErrCodeUserAlreadyExists, "email already registered")
	page := mount(t, store, instantFinalizer(dup), "session-1")

	_, err := page.Submit(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUserAlreadyExists))
}

func TestDetailsController_BackDiscardsDetails(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	seedDraft(t, store, "session-1", validDraft(AccountTypeFreelancer))
	page := mount(t, store, instantFinalizer(nil), "session-1")

	require.NoError(t, page.SetField(FieldJobTitle, "Designer"))
	_, err := page.ToggleSkill("SEO")
	require.NoError(t, err)

	assert.Equal(t, RouteSignup, page.Back())
	assert.Empty(t, page.Details().JobTitle)
	assert.Empty(t, page.Details().Skills)

	_, err = store.Load(context.Background(), "session-1", draftstore.SignupKey)
	assert.NoError(t, err)
}

func TestDetailsController_BackCancelsInFlightSubmission(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	seedDraft(t, store, "session-1", validDraft(AccountTypeClient))

	finalizer := newGatedFinalizer()
	page := mount(t, store, finalizer, "session-1")

	done := make(chan error, 1)
	go func() {
		_, err := page.Submit(context.Background())
		done <- err
	}()
	<-finalizer.started

	assert.Equal(t, RouteSignup, page.Back())

	select {
	case err := <-done:
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSubmissionFailed))
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("submission was not cancelled")
	}

	_, err := store.Load(context.Background(), "session-1", draftstore.SignupKey)
	assert.NoError(t, err)
}

func TestDetailsController_SuccessAfterBackKeepsDraft(t *testing.T) {
	store := draftstore.NewMemoryStore(time.Minute)
	seedDraft(t, store, "session-1", validDraft(AccountTypeClient))

	started := make(chan struct{})
	release := make(chan struct{})
	stubborn := FinalizerFunc(func(ctx context.Context, data CompleteSignupData) (*AccountResult, error) {
		close(started)
		<-release
		return &AccountResult{AccountID: "acc-1", Email: data.Email, AccountType: data.AccountType}, nil
	})
	page := mount(t, store, stubborn, "session-1")

	done := make(chan error, 1)
	go func() {
		_, err := page.Submit(context.Background())
		done <- err
	}()
	<-started

	assert.Equal(t, RouteSignup, page.Back())
	close(release)

	select {
	case err := <-done:
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSubmissionFailed))
	case <-time.After(time.Second):
		t.Fatal("submission did not finish")
	}

	_, err := store.Load(context.Background(), "session-1", draftstore.SignupKey)
	assert.NoError(t, err)
}

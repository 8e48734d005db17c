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

func newTestWizard(f Finalizer) (*Wizard, *draftstore.MemoryStore) {
	store := draftstore.NewMemoryStore(time.Minute)
	return NewWizard(WithDraftStore(store), WithFinalizer(f)), store
}

func TestWizard_DetailsWithoutDraft(t *testing.T) {
	w, _ := newTestWizard(instantFinalizer(nil))
	ctx := context.Background()

	page, redirect, err := w.Details(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Equal(t, RouteSignup, redirect)

	_, err = w.ToggleSkill(ctx, "session-1", "SEO")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingDraft))
	assert.Equal(t, string(RouteSignup), apperrors.GetDetails(err)["redirect"])
	assert.Equal(t, 0, w.ActivePages())
}

func TestWizard_ReusesMountedPage(t *testing.T) {
	w, _ := newTestWizard(instantFinalizer(nil))
	ctx := context.Background()

	_, err := w.SubmitAccount(ctx, "session-1", validDraft(AccountTypeFreelancer))
	require.NoError(t, err)

	_, err = w.ToggleSkill(ctx, "session-1", "SEO")
	require.NoError(t, err)

	page, _, err := w.Details(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"SEO"}, page.Details().Skills)
	assert.Equal(t, 1, w.ActivePages())
}

func TestWizard_SessionsAreIsolated(t *testing.T) {
	w, _ := newTestWizard(instantFinalizer(nil))
	ctx := context.Background()

	_, err := w.SubmitAccount(ctx, "session-a", validDraft(AccountTypeFreelancer))
	require.NoError(t, err)
	client := validDraft(AccountTypeClient)
	client.Email = "bo@example.com"
	_, err = w.SubmitAccount(ctx, "session-b", client)
	require.NoError(t, err)

	a, _, err := w.Details(ctx, "session-a")
	require.NoError(t, err)
	b, _, err := w.Details(ctx, "session-b")
	require.NoError(t, err)

	assert.Equal(t, AccountTypeFreelancer, a.View().Variant.AccountType)
	assert.Equal(t, AccountTypeClient, b.View().Variant.AccountType)
	assert.Equal(t, 2, w.ActivePages())
}

func TestWizard_ResubmittingStepOneRemounts(t *testing.T) {
	w, _ := newTestWizard(instantFinalizer(nil))
	ctx := context.Background()

	_, err := w.SubmitAccount(ctx, "session-1", validDraft(AccountTypeFreelancer))
	require.NoError(t, err)
	_, err = w.ToggleSkill(ctx, "session-1", "SEO")
	require.NoError(t, err)

	_, err = w.SubmitAccount(ctx, "session-1", validDraft(AccountTypeClient))
	require.NoError(t, err)
	assert.Equal(t, 0, w.ActivePages())

	page, _, err := w.Details(ctx, "session-1")
	require.NoError(t, err)
	view := page.View()
	assert.Equal(t, AccountTypeClient, view.Variant.AccountType)
	assert.Empty(t, view.Details.Skills)
}

func TestWizard_SubmitDropsPageOnSuccess(t *testing.T) {
	w, store := newTestWizard(instantFinalizer(nil))
	ctx := context.Background()

	_, err := w.SubmitAccount(ctx, "session-1", validDraft(AccountTypeClient))
	require.NoError(t, err)
	_, err = w.SetField(ctx, "session-1", FieldCompanyName, "Acme")
	require.NoError(t, err)

	next, err := w.Submit(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, RouteAccountType, next)
	assert.Equal(t, 0, w.ActivePages())
	assert.Equal(t, 0, store.Len())

	_, redirect, err := w.Details(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, RouteSignup, redirect)
}

func TestWizard_SubmitFailureKeepsPage(t *testing.T) {
	w, store := newTestWizard(instantFinalizer(errors.New("down")))
	ctx := context.Background()

	_, err := w.SubmitAccount(ctx, "session-1", validDraft(AccountTypeClient))
	require.NoError(t, err)

	_, err = w.Submit(ctx, "session-1")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSubmissionFailed))
	assert.Equal(t, 1, w.ActivePages())
	assert.Equal(t, 1, store.Len())

	page, _, err := w.Details(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, SubmissionErrorMessage, page.ErrorMessage())
}

func TestWizard_Back(t *testing.T) {
	w, store := newTestWizard(instantFinalizer(nil))
	ctx := context.Background()

	assert.Equal(t, RouteSignup, w.Back("nobody"))

	_, err := w.SubmitAccount(ctx, "session-1", validDraft(AccountTypeFreelancer))
	require.NoError(t, err)
	_, err = w.ToggleSkill(ctx, "session-1", "SEO")
	require.NoError(t, err)

	assert.Equal(t, RouteSignup, w.Back("session-1"))
	assert.Equal(t, 0, w.ActivePages())
	assert.Equal(t, 1, store.Len())

	draft, err := w.ResumeAccount(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, AccountTypeFreelancer, draft.AccountType)

	page, _, err := w.Details(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, page.Details().Skills)
}

func TestNewWizard_Defaults(t *testing.T) {
	w := NewWizard()
	assert.NotNil(t, w.store)
	assert.IsType(t, &SimulatedFinalizer{}, w.finalizer)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func TestWizard_ExpiredDraftDropsPage(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := draftstore.NewMemoryStore(time.Minute, draftstore.WithClock(clock.Now))
	w := NewWizard(
		WithDraftStore(store),
		WithFinalizer(instantFinalizer(nil)),
		WithPageTTL(time.Minute),
		WithWizardClock(clock.Now),
	)
	ctx := context.Background()

	for _, sid := range []string{"session-1", "session-2"} {
		_, err := w.SubmitAccount(ctx, sid, validDraft(AccountTypeClient))
		require.NoError(t, err)
		_, _, err = w.Details(ctx, sid)
		require.NoError(t, err)
	}
	require.Equal(t, 2, w.ActivePages())

	clock.now = clock.now.Add(time.Hour)

	page, redirect, err := w.Details(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Equal(t, RouteSignup, redirect)
	assert.Equal(t, 1, w.ActivePages())

	_, err = w.Submit(ctx, "session-1")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingDraft))

	n, err := w.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, w.ActivePages())
}

func TestWizard_DeleteExpiredKeepsActivePages(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := draftstore.NewMemoryStore(time.Hour, draftstore.WithClock(clock.Now))
	w := NewWizard(
		WithDraftStore(store),
		WithFinalizer(instantFinalizer(nil)),
		WithPageTTL(10*time.Minute),
		WithWizardClock(clock.Now),
	)
	ctx := context.Background()

	for _, sid := range []string{"idle", "busy"} {
		_, err := w.SubmitAccount(ctx, sid, validDraft(AccountTypeFreelancer))
		require.NoError(t, err)
		_, _, err = w.Details(ctx, sid)
		require.NoError(t, err)
	}

	clock.now = clock.now.Add(8 * time.Minute)
	_, err := w.ToggleSkill(ctx, "busy", "SEO")
	require.NoError(t, err)

	clock.now = clock.now.Add(5 * time.Minute)
	n, err := w.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, w.ActivePages())

	page, redirect, err := w.Details(ctx, "busy")
	require.NoError(t, err)
	assert.Empty(t, redirect)
	assert.Equal(t, []string{"SEO"}, page.Details().Skills)

	_, redirect, err = w.Details(ctx, "idle")
	require.NoError(t, err)
	assert.Empty(t, redirect, "a swept page remounts while its draft lives")
	assert.Empty(t, mustDetails(t, w, "idle").Skills)
}

func mustDetails(t *testing.T, w *Wizard, sid string) DetailsDraft {
	t.Helper()
	page, _, err := w.Details(context.Background(), sid)
	require.NoError(t, err)
	return page.Details()
}

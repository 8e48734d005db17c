package signup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tendant/simple-onboarding/pkg/draftstore"
	apperrors "github.com/tendant/simple-onboarding/pkg/errors"
)

// Wizard wires the two signup steps together and keeps the active step-2
// controller of every session.
type Wizard struct {
	store     draftstore.Store
	finalizer Finalizer
	account   *AccountStep

	pageTTL time.Duration
	now     func() time.Time

	mu    sync.Mutex
	pages map[string]*mountedPage
}

type mountedPage struct {
	page     *DetailsController
	lastSeen time.Time
}

var _ draftstore.Sweeper = (*Wizard)(nil)

// WizardOption is a functional option for configuring Wizard
type WizardOption func(*Wizard)

// WithDraftStore sets the draft store
func WithDraftStore(store draftstore.Store) WizardOption {
	return func(w *Wizard) {
		w.store = store
	}
}

// WithFinalizer sets the account-creation collaborator
func WithFinalizer(f Finalizer) WizardOption {
	return func(w *Wizard) {
		w.finalizer = f
	}
}

// WithPageTTL sets how long an untouched step-2 page stays mounted
func WithPageTTL(ttl time.Duration) WizardOption {
	return func(w *Wizard) {
		w.pageTTL = ttl
	}
}

// WithWizardClock overrides the time source used for page expiry
func WithWizardClock(now func() time.Time) WizardOption {
	return func(w *Wizard) {
		w.now = now
	}
}

// NewWizard creates a Wizard. Without options it uses an in-memory draft
// store and a simulated finalizer.
func NewWizard(opts ...WizardOption) *Wizard {
	w := &Wizard{
		pageTTL: draftstore.DefaultTTL,
		now:     time.Now,
		pages:   make(map[string]*mountedPage),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.store == nil {
		w.store = draftstore.NewMemoryStore(draftstore.DefaultTTL)
	}
	if w.finalizer == nil {
		w.finalizer = NewSimulatedFinalizer(DefaultSimulatedDelay)
	}
	w.account = NewAccountStep(w.store)
	return w
}

// SubmitAccount runs step 1 for the session. Any step-2 page from an earlier
// pass is dropped so the next mount sees the new draft.
func (w *Wizard) SubmitAccount(ctx context.Context, sessionID string, draft SignupDraft) (Route, error) {
	next, err := w.account.Submit(ctx, sessionID, draft)
	if err != nil {
		return "", err
	}
	w.drop(sessionID)
	return next, nil
}

// ResumeAccount returns the saved step-1 draft without passwords.
func (w *Wizard) ResumeAccount(ctx context.Context, sessionID string) (*SignupDraft, error) {
	return w.account.Resume(ctx, sessionID)
}

// Details returns the session's step-2 controller, mounting it on first use.
// A non-empty Route means there is no draft and the user belongs on that page.
// A mounted page is only reused while its draft is still in the store.
func (w *Wizard) Details(ctx context.Context, sessionID string) (*DetailsController, Route, error) {
	w.mu.Lock()
	mounted, ok := w.pages[sessionID]
	w.mu.Unlock()
	if ok {
		_, err := w.store.Load(ctx, sessionID, draftstore.SignupKey)
		if errors.Is(err, draftstore.ErrNotFound) {
			slog.Info("Signup draft expired, dropping details page", "session", sessionID)
			w.dropPage(sessionID, mounted.page)
			mounted.page.Back()
			return nil, RouteSignup, nil
		}
		if err != nil {
			return nil, "", apperrors.InternalWrap(err, "failed to load signup draft")
		}
		w.touch(sessionID, mounted)
		return mounted.page, "", nil
	}

	page, redirect, err := MountDetails(ctx, w.store, w.finalizer, sessionID)
	if err != nil || redirect != "" {
		return nil, redirect, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.pages[sessionID]; ok {
		existing.lastSeen = w.now()
		return existing.page, "", nil
	}
	w.pages[sessionID] = &mountedPage{page: page, lastSeen: w.now()}
	return page, "", nil
}

func (w *Wizard) touch(sessionID string, mounted *mountedPage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pages[sessionID] == mounted {
		mounted.lastSeen = w.now()
	}
}

// DeleteExpired unmounts pages nobody has touched within the page TTL.
// Pages with a submission in flight are kept.
func (w *Wizard) DeleteExpired(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.pageTTL)

	var expired []*DetailsController
	w.mu.Lock()
	for sid, mounted := range w.pages {
		if mounted.lastSeen.After(cutoff) || mounted.page.Loading() {
			continue
		}
		delete(w.pages, sid)
		expired = append(expired, mounted.page)
	}
	w.mu.Unlock()

	for _, page := range expired {
		page.Back()
	}
	return int64(len(expired)), nil
}

// activePage returns the mounted controller or a missing-draft error.
func (w *Wizard) activePage(ctx context.Context, sessionID string) (*DetailsController, error) {
	page, redirect, err := w.Details(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if redirect != "" {
		return nil, apperrors.New(apperrors.ErrCodeMissingDraft, "no signup in progress").
			WithDetail("redirect", string(redirect))
	}
	return page, nil
}

func (w *Wizard) SetField(ctx context.Context, sessionID, name, value string) (*DetailsController, error) {
	page, err := w.activePage(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return page, page.SetField(name, value)
}

func (w *Wizard) ToggleSkill(ctx context.Context, sessionID, item string) (*DetailsController, error) {
	page, err := w.activePage(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	_, err = page.ToggleSkill(item)
	return page, err
}

// Submit finalizes the session's signup. A completed page is dropped; a
// failed one stays mounted so the user can retry.
func (w *Wizard) Submit(ctx context.Context, sessionID string) (Route, error) {
	page, err := w.activePage(ctx, sessionID)
	if err != nil {
		return "", err
	}
	next, err := page.Submit(ctx)
	if err != nil {
		return "", err
	}
	w.dropPage(sessionID, page)
	return next, nil
}

// Back leaves step 2 and forgets its state.
func (w *Wizard) Back(sessionID string) Route {
	w.mu.Lock()
	mounted, ok := w.pages[sessionID]
	delete(w.pages, sessionID)
	w.mu.Unlock()

	if ok {
		return mounted.page.Back()
	}
	return RouteSignup
}

// ActivePages returns how many sessions have a mounted step-2 page.
func (w *Wizard) ActivePages() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pages)
}

func (w *Wizard) drop(sessionID string) {
	w.mu.Lock()
	mounted, ok := w.pages[sessionID]
	delete(w.pages, sessionID)
	w.mu.Unlock()

	if ok {
		mounted.page.Back()
		slog.Debug("Dropped stale details page", "session", sessionID)
	}
}

func (w *Wizard) dropPage(sessionID string, page *DetailsController) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if mounted, ok := w.pages[sessionID]; ok && mounted.page == page {
		delete(w.pages, sessionID)
	}
}

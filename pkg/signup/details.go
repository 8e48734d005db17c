package signup

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tendant/simple-onboarding/pkg/draftstore"
	apperrors "github.com/tendant/simple-onboarding/pkg/errors"
)

// SubmissionErrorMessage is shown to the user when account creation fails.
const SubmissionErrorMessage = "We couldn't create your account. Please try again."

// DetailsController owns step 2 for one session. The signup draft is read
// once at mount and never written back; the details live only here.
type DetailsController struct {
	mu sync.Mutex

	sessionID string
	store     draftstore.Store
	finalizer Finalizer

	signup  SignupDraft
	variant Variant
	details DetailsDraft
	skills  TagSet

	loading   bool
	cancel    context.CancelFunc
	abandoned bool
	errMsg    string
}

// MountDetails loads the session's signup draft. When there is none, or it
// names an account type we no longer know, it returns RouteSignup and no
// controller so the caller can send the user back to step 1.
func MountDetails(ctx context.Context, store draftstore.Store, finalizer Finalizer, sessionID string) (*DetailsController, Route, error) {
	var draft SignupDraft
	err := draftstore.LoadJSON(ctx, store, sessionID, draftstore.SignupKey, &draft)
	if errors.Is(err, draftstore.ErrNotFound) {
		slog.Info("No signup draft, redirecting to step 1", "session", sessionID)
		return nil, RouteSignup, nil
	}
	if err != nil {
		return nil, "", apperrors.InternalWrap(err, "failed to load signup draft")
	}

	variant, err := VariantFor(draft.AccountType)
	if err != nil {
		slog.Warn("Signup draft has unknown account type, redirecting to step 1", "session", sessionID, "account_type", draft.AccountType)
		return nil, RouteSignup, nil
	}

	return &DetailsController{
		sessionID: sessionID,
		store:     store,
		finalizer: finalizer,
		signup:    draft,
		variant:   variant,
	}, "", nil
}

// SetField updates one named field of the details draft.
func (c *DetailsController) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	field, ok := c.variant.Field(name)
	if !ok {
		return apperrors.Newf(apperrors.ErrCodeUnknownField, "unknown field %q", name).
			WithDetail("account_type", c.variant.AccountType)
	}
	if !field.allows(value) {
		return apperrors.InvalidInput(name, "not one of the listed options").
			WithDetail("value", value)
	}

	switch name {
	case FieldJobTitle:
		c.details.JobTitle = value
	case FieldSpecialization:
		c.details.Specialization = value
	case FieldCompanyName:
		c.details.CompanyName = value
	}
	return nil
}

// ToggleSkill adds or removes a tag and reports whether it is now selected.
func (c *DetailsController) ToggleSkill(item string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.variant.IsCandidate(item) {
		return false, apperrors.Newf(apperrors.ErrCodeUnknownTag, "%q is not a selectable option", item)
	}
	return c.skills.Toggle(item), nil
}

// CanSubmit mirrors the enabled state of the submit control.
func (c *DetailsController) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

func (c *DetailsController) canSubmitLocked() bool {
	return !c.loading && c.skills.Len() >= c.variant.MinTags
}

// Loading reports whether a submission is in flight.
func (c *DetailsController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// ErrorMessage is the user-visible message from the last failed submission.
func (c *DetailsController) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Details returns the current details draft including the selected tags.
func (c *DetailsController) Details() DetailsDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detailsLocked()
}

func (c *DetailsController) detailsLocked() DetailsDraft {
	d := c.details
	d.Skills = c.skills.Items()
	return d
}

// MissingFields lists required fields that are still empty.
func (c *DetailsController) MissingFields() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.variant.MissingFields(c.detailsLocked())
}

// Submit merges both drafts and hands them to the finalizer. Only one
// submission may be in flight; the submit control reads as disabled until it
// resolves. On success the draft store is cleared and the user moves on to
// RouteAccountType. On failure the draft is left for a retry.
func (c *DetailsController) Submit(ctx context.Context) (Route, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return "", apperrors.New(apperrors.ErrCodeSubmissionInFlight, "a submission is already in progress")
	}
	if c.skills.Len() < c.variant.MinTags {
		selected, required := c.skills.Len(), c.variant.MinTags
		c.mu.Unlock()
		return "", apperrors.Newf(apperrors.ErrCodeTooFewSkills, "select at least %d skills", required).
			WithDetail("selected", selected).
			WithDetail("required", required)
	}

	data := Merge(c.signup, c.detailsLocked())
	ctx, cancel := context.WithCancel(ctx)
	c.loading = true
	c.cancel = cancel
	c.abandoned = false
	c.errMsg = ""
	c.mu.Unlock()

	slog.Info("Submitting signup", "session", c.sessionID, "account_type", data.AccountType, "skills", len(data.Skills))
	result, err := c.finalizer.CreateAccount(ctx, data)
	cancel()

	c.mu.Lock()
	c.loading = false
	c.cancel = nil
	if err == nil && c.abandoned {
		// The user went back while the account was being created. Their
		// draft stays so step 1 can be resumed.
		c.mu.Unlock()
		slog.Warn("Account created after the user left step 2, keeping draft", "session", c.sessionID, "account_id", result.AccountID)
		return "", apperrors.Wrap(context.Canceled, apperrors.ErrCodeSubmissionFailed, SubmissionErrorMessage)
	}
	if err != nil {
		c.errMsg = SubmissionErrorMessage
		c.mu.Unlock()
		slog.Error("Account creation failed", "session", c.sessionID, "error", err)
		if apperrors.IsCode(err, apperrors.ErrCodeUserAlreadyExists) {
			return "", err
		}
		return "", apperrors.Wrap(err, apperrors.ErrCodeSubmissionFailed, SubmissionErrorMessage)
	}
	c.mu.Unlock()

	// The account exists at this point; a stale draft only means step 1 is
	// prefilled on a later visit.
	if err := c.store.Clear(context.WithoutCancel(ctx), c.sessionID, draftstore.SignupKey); err != nil {
		slog.Error("Failed to clear signup draft", "session", c.sessionID, "error", err)
	}

	slog.Info("Signup completed", "session", c.sessionID, "account_id", result.AccountID)
	return RouteAccountType, nil
}

// Back abandons step 2. The details are discarded, the signup draft stays in
// the store, and an in-flight submission is cancelled.
func (c *DetailsController) Back() Route {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		slog.Info("Cancelling in-flight submission", "session", c.sessionID)
		c.cancel()
		c.abandoned = true
	}
	c.details = DetailsDraft{}
	c.skills = TagSet{}
	return RouteSignup
}

// DetailsView is a snapshot of everything the details page renders.
type DetailsView struct {
	Signup        SignupDraft  `json:"signup"`
	Variant       Variant      `json:"variant"`
	Details       DetailsDraft `json:"details"`
	Chips         []string     `json:"chips"`
	Candidates    []Candidate  `json:"candidates"`
	MissingFields []string     `json:"missingFields"`
	CanSubmit     bool         `json:"canSubmit"`
	Loading       bool         `json:"loading"`
	Error         string       `json:"error,omitempty"`
}

func (c *DetailsController) View() DetailsView {
	c.mu.Lock()
	defer c.mu.Unlock()

	details := c.detailsLocked()
	return DetailsView{
		Signup:        c.signup.Redacted(),
		Variant:       c.variant,
		Details:       details,
		Chips:         c.skills.Items(),
		Candidates:    c.skills.Candidates(c.variant.Candidates),
		MissingFields: c.variant.MissingFields(details),
		CanSubmit:     c.canSubmitLocked(),
		Loading:       c.loading,
		Error:         c.errMsg,
	}
}

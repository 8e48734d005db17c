package signup

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tendant/simple-onboarding/pkg/draftstore"
	apperrors "github.com/tendant/simple-onboarding/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// AccountStep owns the step-1 form: it validates the identity fields and
// hands the record to step 2 through the draft store.
type AccountStep struct {
	store draftstore.Store
}

func NewAccountStep(store draftstore.Store) *AccountStep {
	return &AccountStep{store: store}
}

// Submit validates draft and persists it for the session.
func (s *AccountStep) Submit(ctx context.Context, sessionID string, draft SignupDraft) (Route, error) {
	draft.FirstName = strings.TrimSpace(draft.FirstName)
	draft.LastName = strings.TrimSpace(draft.LastName)
	draft.Email = strings.ToLower(strings.TrimSpace(draft.Email))

	if err := ValidateSignupDraft(draft); err != nil {
		return "", err
	}

	if err := draftstore.SaveJSON(ctx, s.store, sessionID, draftstore.SignupKey, draft); err != nil {
		slog.Error("Failed to save signup draft", "session", sessionID, "error", err)
		return "", apperrors.InternalWrap(err, "failed to save signup draft")
	}

	slog.Info("Signup draft saved", "session", sessionID, "account_type", draft.AccountType)
	return RouteSignupDetails, nil
}

// Resume returns the saved draft with passwords blanked, for prefilling step 1.
func (s *AccountStep) Resume(ctx context.Context, sessionID string) (*SignupDraft, error) {
	var draft SignupDraft
	err := draftstore.LoadJSON(ctx, s.store, sessionID, draftstore.SignupKey, &draft)
	if errors.Is(err, draftstore.ErrNotFound) {
		return nil, apperrors.New(apperrors.ErrCodeMissingDraft, "no signup in progress")
	}
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to load signup draft")
	}
	redacted := draft.Redacted()
	return &redacted, nil
}

// ValidateSignupDraft checks the step-1 fields and reports every failing
// field by its JSON name.
func ValidateSignupDraft(draft SignupDraft) error {
	err := validate.Struct(draft)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.InternalWrap(err, "failed to validate signup draft")
	}

	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = validationMessage(fe)
	}
	return apperrors.ValidationFailed(details)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "termsAccepted" {
			return "must be accepted"
		}
		return "required"
	case "email":
		return "invalid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "eqfield":
		return "passwords do not match"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "invalid"
}

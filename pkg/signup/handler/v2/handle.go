package v2

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-onboarding/pkg/session"
	"github.com/tendant/simple-onboarding/pkg/signup"
	apperrors "github.com/tendant/simple-onboarding/pkg/errors"
)

type Handle struct {
	wizard *signup.Wizard
}

func NewHandle(wizard *signup.Wizard) *Handle {
	return &Handle{
		wizard: wizard,
	}
}

// RegisterRoutes registers all signup routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route(string(signup.RouteSignup), func(r chi.Router) {
		r.Post("/", h.SubmitAccount)
		r.Get("/", h.ResumeAccount)
	})
	r.Route(string(signup.RouteSignupDetails), func(r chi.Router) {
		r.Get("/", h.Details)
		r.Put("/fields/{name}", h.SetField)
		r.Post("/skills/toggle", h.ToggleSkill)
		r.Post("/submit", h.Submit)
		r.Post("/back", h.Back)
		r.Get("/variants/{accountType}", h.Variant)
	})
}

// SubmitAccount handles the step-1 form
func (h *Handle) SubmitAccount(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var draft signup.SignupDraft
	if err := render.DecodeJSON(r.Body, &draft); err != nil {
		slog.Error("Failed to decode signup request", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	next, err := h.wizard.SubmitAccount(r.Context(), sid, draft)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NextResponse{Next: string(next)})
}

// ResumeAccount returns the saved step-1 draft for prefilling the form
func (h *Handle) ResumeAccount(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	draft, err := h.wizard.ResumeAccount(r.Context(), sid)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, draft)
}

// Details mounts step 2, or sends the browser back to step 1 without a draft
func (h *Handle) Details(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	page, redirect, err := h.wizard.Details(r.Context(), sid)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if redirect != "" {
		http.Redirect(w, r, string(redirect), http.StatusSeeOther)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, page.View())
}

func (h *Handle) SetField(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req SetFieldRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	page, err := h.wizard.SetField(r.Context(), sid, chi.URLParam(r, "name"), req.Value)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, page.View())
}

func (h *Handle) ToggleSkill(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req ToggleSkillRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	page, err := h.wizard.ToggleSkill(r.Context(), sid, req.Item)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	view := page.View()
	selected := false
	for _, chip := range view.Chips {
		if chip == req.Item {
			selected = true
			break
		}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ToggleSkillResponse{Item: req.Item, Selected: selected, Page: view})
}

// Submit checks the required fields, then finalizes the signup
func (h *Handle) Submit(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	page, redirect, err := h.wizard.Details(r.Context(), sid)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if redirect != "" {
		h.handleServiceError(w, r, apperrors.New(apperrors.ErrCodeMissingDraft, "no signup in progress").
			WithDetail("redirect", string(redirect)))
		return
	}

	if missing := page.MissingFields(); len(missing) > 0 {
		h.handleServiceError(w, r, apperrors.New(apperrors.ErrCodeMissingRequired, "please fill in all required fields").
			WithDetail("fields", missing))
		return
	}

	next, err := h.wizard.Submit(r.Context(), sid)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NextResponse{Next: string(next)})
}

func (h *Handle) Back(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NextResponse{Next: string(h.wizard.Back(sid))})
}

// Variant previews the step-2 page for an account type
func (h *Handle) Variant(w http.ResponseWriter, r *http.Request) {
	variant, err := signup.VariantFor(signup.AccountType(chi.URLParam(r, "accountType")))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, variant)
}

func (h *Handle) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid, ok := session.SessionID(r.Context())
	if !ok {
		slog.Error("Signup request without session", "path", r.URL.Path)
		writeError(w, r, http.StatusUnauthorized, "No signup session")
		return "", false
	}
	return sid, true
}

// handleServiceError converts service errors to HTTP responses
func (h *Handle) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		slog.Error("Unexpected signup error", "error", err)
		writeError(w, r, http.StatusInternalServerError, "An error occurred during signup")
		return
	}

	status := appErr.HTTPStatusCode()
	if status >= http.StatusInternalServerError {
		slog.Error("Signup request failed", "code", appErr.Code, "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:   appErr.Message,
		Code:    string(appErr.Code),
		Details: appErr.Details,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, code int, message string) {
	render.Status(r, code)
	render.JSON(w, r, ErrorResponse{Error: message})
}

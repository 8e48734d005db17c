package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tendant/simple-onboarding/pkg/signup"
	apperrors "github.com/tendant/simple-onboarding/pkg/errors"
)

const (
	AccountsPath   = "/accounts"
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 4 << 10
)

// RemoteFinalizer creates accounts by posting completed signups to an
// account service over HTTP. Requests are not retried.
type RemoteFinalizer struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for configuring RemoteFinalizer
type Option func(*RemoteFinalizer)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) Option {
	return func(f *RemoteFinalizer) {
		f.httpClient = c
	}
}

func NewRemoteFinalizer(baseURL string, opts ...Option) *RemoteFinalizer {
	f := &RemoteFinalizer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ signup.Finalizer = (*RemoteFinalizer)(nil)

func (f *RemoteFinalizer) CreateAccount(ctx context.Context, data signup.CompleteSignupData) (*signup.AccountResult, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signup: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+AccountsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build account request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("account service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil, apperrors.New(apperrors.ErrCodeUserAlreadyExists, "an account with this email already exists")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.Error("Account service rejected signup", "status", resp.StatusCode, "body", string(snippet))
		return nil, apperrors.Newf(apperrors.ErrCodeInternal, "account service returned status %d", resp.StatusCode).
			WithDetail("status", resp.StatusCode)
	}

	var result signup.AccountResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode account response: %w", err)
	}
	if result.AccountID == "" {
		return nil, fmt.Errorf("account service response has no account id")
	}
	return &result, nil
}

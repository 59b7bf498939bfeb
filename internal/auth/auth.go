package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ihildy/timesheet-cli/internal/api"
)

const DefaultTimeout = 45 * time.Second

// NewHTTPClient returns the client used for every backend call. When token is
// set, requests carry it as a bearer token.
func NewHTTPClient(ctx context.Context, token string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if token == "" {
		return &http.Client{Timeout: timeout}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := oauth2.NewClient(ctx, ts)
	client.Timeout = timeout
	return client
}

type ProfileFetcher interface {
	GetProfile(ctx context.Context, email string) (api.Profile, error)
}

type Authenticator struct {
	API ProfileFetcher
}

// Verify resolves email to an employee record, which is the only identity
// check the backend offers.
func (a *Authenticator) Verify(ctx context.Context, email string) (api.Employee, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return api.Employee{}, fmt.Errorf("acting email is required; set it with `timesheet config set-email` or --email")
	}
	p, err := a.API.GetProfile(ctx, email)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return api.Employee{}, fmt.Errorf("no employee found for %s: %w", email, err)
		}
		return api.Employee{}, fmt.Errorf("verify identity: %w", err)
	}
	if p.Employee.ID == 0 {
		return api.Employee{}, fmt.Errorf("no employee found for %s", email)
	}
	return p.Employee, nil
}

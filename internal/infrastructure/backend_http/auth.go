// Package backend_http runs the register/login/verify sequence against the
// backend under test.
package backend_http

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/domain"
	"github.com/davarch/qa-harness/internal/infrastructure/httpjson"
)

const (
	testPassword    = "TestPass123!"
	testDisplayName = "QA Tester"
)

// tokenFields is consulted in priority order; the first non-empty match wins.
var tokenFields = []string{"token", "access_token", "idToken", "id_token"}

type Flow struct {
	baseURL string
	timeout time.Duration
	http    *httpjson.Client
	creds   domain.CredentialsSink
	log     *zap.Logger
	now     func() time.Time
}

func New(log *zap.Logger, hc *httpjson.Client, baseURL string, timeout time.Duration, creds domain.CredentialsSink) *Flow {
	return &Flow{
		baseURL: baseURL,
		timeout: timeout,
		http:    hc,
		creds:   creds,
		log:     log,
		now:     time.Now,
	}
}

// Run registers a fresh user, logs in, and verifies the token. Each step
// short-circuits the rest on failure; the verify step is informational and
// never flips Success once a token was obtained.
func (f *Flow) Run(ctx context.Context) domain.AuthOutcome {
	email := fmt.Sprintf("qa-tester-%d@test.example.com", f.now().Unix())
	out := domain.AuthOutcome{
		Email:    email,
		Password: testPassword,
		Steps:    map[string]domain.StepResult{},
	}

	f.log.Info("registering", zap.String("email", email))
	status, body := f.http.Post(ctx, f.baseURL+"/api/auth/register", map[string]any{
		"email":        email,
		"password":     testPassword,
		"name":         testDisplayName,
		"display_name": testDisplayName,
	}, f.timeout)
	out.Steps["register"] = domain.StepResult{Status: status, Response: body}

	if !httpjson.OK(status) {
		out.Error = fmt.Sprintf("Registration failed (HTTP %d)", status)
		f.log.Warn("register failed", zap.Int("status", status), zap.Any("body", body))
		return out
	}
	f.log.Info("register ok", zap.Int("status", status))

	status, body = f.http.Post(ctx, f.baseURL+"/api/auth/login", map[string]any{
		"email":    email,
		"password": testPassword,
	}, f.timeout)
	out.Steps["login"] = domain.StepResult{Status: status}

	if !httpjson.OK(status) {
		out.Error = fmt.Sprintf("Login failed (HTTP %d)", status)
		f.log.Warn("login failed", zap.Int("status", status), zap.Any("body", body))
		return out
	}

	token := extractToken(body)
	if token == "" {
		out.Error = fmt.Sprintf("Login response has no token field. Keys: %v", bodyKeys(body))
		f.log.Warn("no token in login response", zap.Strings("keys", bodyKeys(body)))
		return out
	}
	f.log.Info("login ok, token received", zap.Int("status", status))

	status, _ = f.http.Get(ctx, f.baseURL+"/api/users/me", map[string]string{
		"Authorization": "Bearer " + token,
	}, f.timeout)
	out.Steps["verify_token"] = domain.StepResult{Status: status}
	f.log.Info("verify token (/api/users/me)", zap.Int("status", status))

	out.Success = true
	out.TokenVerified = domain.BoolPtr(httpjson.OK(status))

	if err := f.creds.Write(domain.Credentials{Email: email, Password: testPassword}); err != nil {
		f.log.Warn("could not persist credentials", zap.Error(err))
	} else {
		f.log.Info("credentials saved")
	}

	return out
}

func extractToken(body map[string]any) string {
	for _, field := range tokenFields {
		if v, ok := body[field].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func bodyKeys(body map[string]any) []string {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

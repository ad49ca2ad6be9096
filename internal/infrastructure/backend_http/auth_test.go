package backend_http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/domain"
	"github.com/davarch/qa-harness/internal/infrastructure/httpjson"
)

type fakeBackend struct {
	loginBody   map[string]any
	verifyCode  int
	registered  map[string]bool
	loginCalls  int
	verifyCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		loginBody:  map[string]any{"token": "tok-1"},
		verifyCode: http.StatusOK,
		registered: map[string]bool{},
	}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if b.registered[req["email"]] {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"detail":"Email already registered"}`))
			return
		}
		b.registered[req["email"]] = true
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"user":{"id":1},"token":"tok-1"}`))
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.loginCalls++
		_ = json.NewEncoder(w).Encode(b.loginBody)
	})
	mux.HandleFunc("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		b.verifyCalls++
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"missing token"}`))
			return
		}
		w.WriteHeader(b.verifyCode)
		_, _ = w.Write([]byte(`{"id":1,"email":"x"}`))
	})
	return mux
}

func newFlow(t *testing.T, srvURL string) (*Flow, *domain.MockCredentialsSink) {
	t.Helper()
	sink := &domain.MockCredentialsSink{}
	return New(zap.NewNop(), httpjson.New(), srvURL, 5*time.Second, sink), sink
}

func TestRun_HappyPath(t *testing.T) {
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	flow, sink := newFlow(t, srv.URL)
	out := flow.Run(context.Background())

	if !out.Success {
		t.Fatalf("expected success, got error %q", out.Error)
	}
	if out.TokenVerified == nil || !*out.TokenVerified {
		t.Errorf("token_verified = %v, want true", out.TokenVerified)
	}
	if len(sink.Saved) != 1 || sink.Saved[0].Email != out.Email {
		t.Errorf("credentials not persisted: %v", sink.Saved)
	}
	for _, step := range []string{"register", "login", "verify_token"} {
		if _, ok := out.Steps[step]; !ok {
			t.Errorf("step %q missing from outcome", step)
		}
	}
}

func TestRun_RegisterConflictShortCircuits(t *testing.T) {
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	flow, _ := newFlow(t, srv.URL)
	// Same second means same generated email; pin now() to force the clash.
	fixed := time.Unix(1700000000, 0)
	flow.now = func() time.Time { return fixed }

	first := flow.Run(context.Background())
	if !first.Success {
		t.Fatalf("first run should succeed: %q", first.Error)
	}

	second := flow.Run(context.Background())
	if second.Success {
		t.Fatal("second registration with same email should fail")
	}
	if second.Steps["register"].Status != http.StatusConflict {
		t.Errorf("register status = %d, want 409", second.Steps["register"].Status)
	}
	if !strings.Contains(second.Error, "Registration failed") {
		t.Errorf("error = %q", second.Error)
	}
	if backend.loginCalls != 1 {
		t.Errorf("login attempted after failed registration (calls=%d)", backend.loginCalls)
	}
}

func TestRun_TokenFieldPriority(t *testing.T) {
	backend := newFakeBackend()
	backend.loginBody = map[string]any{"token": "primary", "access_token": "secondary"}

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/users/me" {
			gotAuth = r.Header.Get("Authorization")
		}
		backend.handler().ServeHTTP(w, r)
	}))
	defer srv.Close()

	flow, _ := newFlow(t, srv.URL)
	out := flow.Run(context.Background())

	if !out.Success {
		t.Fatalf("unexpected failure: %q", out.Error)
	}
	if gotAuth != "Bearer primary" {
		t.Errorf("token priority violated, verify used %q", gotAuth)
	}
}

func TestRun_SynonymTokenFieldAccepted(t *testing.T) {
	backend := newFakeBackend()
	backend.loginBody = map[string]any{"idToken": "tok-id"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	flow, _ := newFlow(t, srv.URL)
	if out := flow.Run(context.Background()); !out.Success {
		t.Fatalf("idToken should be accepted: %q", out.Error)
	}
}

func TestRun_NoTokenFieldFailsWithObservedKeys(t *testing.T) {
	backend := newFakeBackend()
	backend.loginBody = map[string]any{"user": map[string]any{"id": 1}, "session": "s"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	flow, sink := newFlow(t, srv.URL)
	out := flow.Run(context.Background())

	if out.Success {
		t.Fatal("expected failure when no token field present")
	}
	if !strings.Contains(out.Error, "session") || !strings.Contains(out.Error, "user") {
		t.Errorf("error should name observed keys, got %q", out.Error)
	}
	if len(sink.Saved) != 0 {
		t.Error("credentials must not be persisted on failure")
	}
}

func TestRun_VerifyFailureDoesNotFlipSuccess(t *testing.T) {
	backend := newFakeBackend()
	backend.verifyCode = http.StatusInternalServerError
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	flow, _ := newFlow(t, srv.URL)
	out := flow.Run(context.Background())

	if !out.Success {
		t.Fatalf("verify failure must not fail the flow: %q", out.Error)
	}
	if out.TokenVerified == nil || *out.TokenVerified {
		t.Errorf("token_verified = %v, want false", out.TokenVerified)
	}
	if out.Steps["verify_token"].Status != http.StatusInternalServerError {
		t.Errorf("verify status = %d", out.Steps["verify_token"].Status)
	}
}

func TestRun_BackendDownFailsWithSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	flow, _ := newFlow(t, srv.URL)
	out := flow.Run(context.Background())

	if out.Success {
		t.Fatal("expected failure against a dead backend")
	}
	if out.Steps["register"].Status != 0 {
		t.Errorf("register status = %d, want sentinel 0", out.Steps["register"].Status)
	}
	if _, ok := out.Steps["register"].Response["error"]; !ok {
		t.Errorf("sentinel step must carry error body, got %v", out.Steps["register"].Response)
	}
}

package agent_http

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

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	c := New(zap.NewNop(), httpjson.New(), url, Options{
		ProbeDelays: []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond, time.Millisecond},
	})
	return c
}

func TestProbe_ServerErrorStillCountsAsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"booting"}`))
	}))
	defer srv.Close()

	if !newClient(t, srv.URL).Probe(context.Background()) {
		t.Fatal("a 500 proves the process is listening; probe must report reachable")
	}
}

func TestProbe_ExhaustsAttemptsAgainstDeadServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newClient(t, srv.URL)
	slept := 0
	c.sleep = func(ctx context.Context, d time.Duration) bool {
		slept++
		return true
	}

	if c.Probe(context.Background()) {
		t.Fatal("probe against dead server must fail")
	}
	if slept != 3 {
		t.Errorf("expected 3 sleeps between 4 attempts, got %d", slept)
	}
}

func TestInvoke_UnwrapsEnvelopeAndMergesScreenshots(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(`{
			"smokeTestResults": {
				"overall": "pass",
				"tests": [{"feature":"Login","status":"pass","notes":"ok"}],
				"critical_issues": []
			},
			"screenshotUrls": ["https://shots.example.com/1.png"]
		}`))
	}))
	defer srv.Close()

	res := newClient(t, srv.URL).Invoke(context.Background(), domain.SmokeRequest{
		TargetURL:         "https://target/login",
		Email:             "u@example.com",
		Password:          "pw",
		Features:          []string{"Login"},
		UploadScreenshots: true,
	})

	if res.Overall != domain.OverallPass {
		t.Fatalf("overall = %q", res.Overall)
	}
	if res.ServiceReachable == nil || !*res.ServiceReachable {
		t.Error("service_reachable must be forced true on a parsed response")
	}
	if len(res.Tests) != 1 || res.Tests[0].Feature != "Login" {
		t.Errorf("tests = %v", res.Tests)
	}
	if len(res.ScreenshotURLs) != 1 || !strings.HasSuffix(res.ScreenshotURLs[0], "1.png") {
		t.Errorf("screenshot merge failed: %v", res.ScreenshotURLs)
	}

	if gotReq["url"] != "https://target/login" {
		t.Errorf("request url = %v", gotReq["url"])
	}
	if gotReq["maxIterations"] != float64(15) || gotReq["timeout"] != float64(120000) {
		t.Errorf("tuning parameters = %v / %v", gotReq["maxIterations"], gotReq["timeout"])
	}
	if gotReq["uploadScreenshots"] != true {
		t.Errorf("uploadScreenshots = %v", gotReq["uploadScreenshots"])
	}
	creds, _ := gotReq["credentials"].(map[string]any)
	if creds["email"] != "u@example.com" {
		t.Errorf("credentials = %v", creds)
	}
}

func TestInvoke_TopLevelResultWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"overall":"fail","tests":[{"feature":"Nav","status":"fail","notes":"404"}]}`))
	}))
	defer srv.Close()

	res := newClient(t, srv.URL).Invoke(context.Background(), domain.SmokeRequest{})
	if res.Overall != domain.OverallFail {
		t.Fatalf("overall = %q", res.Overall)
	}
	if res.ServiceReachable == nil || !*res.ServiceReachable {
		t.Error("service_reachable must be true")
	}
}

func TestInvoke_MissingOverallDefaultsToUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"smokeTestResults":{}}`))
	}))
	defer srv.Close()

	res := newClient(t, srv.URL).Invoke(context.Background(), domain.SmokeRequest{})
	if res.Overall != domain.OverallUnknown {
		t.Fatalf("overall = %q, want unknown", res.Overall)
	}
}

func TestInvoke_HTTPErrorBecomesErrorResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer srv.Close()

	res := newClient(t, srv.URL).Invoke(context.Background(), domain.SmokeRequest{})
	if res.Overall != domain.OverallError {
		t.Fatalf("overall = %q, want error", res.Overall)
	}
	if res.ServiceReachable == nil || !*res.ServiceReachable {
		t.Error("an HTTP error response still proves the service is up")
	}
	if res.Detail["error"] != "overloaded" {
		t.Errorf("detail = %v", res.Detail)
	}
	if !strings.Contains(res.Error, "503") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestInvoke_TransportFailureBecomesSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	res := newClient(t, srv.URL).Invoke(context.Background(), domain.SmokeRequest{})
	if res.Overall != domain.OverallSkipped {
		t.Fatalf("overall = %q, want skipped", res.Overall)
	}
	if res.ServiceReachable == nil || *res.ServiceReachable {
		t.Error("service_reachable must be false on transport failure")
	}
	if !strings.Contains(res.Reason, "unreachable") {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestTruncate_KeepsRunesIntact(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"plain ascii", 5, "plain"},
		{"short", 80, "short"},
		{"héllo wörld", 4, "héll"},
		{"日本語のノート", 3, "日本語"},
	}

	for _, tc := range cases {
		if got := truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

// Package agent_http talks to the remote browser-automation agent: a
// bounded-retry wake-up probe and the long-running /smoke-test invocation.
package agent_http

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/domain"
	"github.com/davarch/qa-harness/internal/infrastructure/httpjson"
)

// The hosted agent sleeps between runs; the first request can take most of
// a minute to get a listener. Delays are summed, not exponential.
var defaultProbeDelays = []time.Duration{
	10 * time.Second,
	15 * time.Second,
	15 * time.Second,
	15 * time.Second,
}

type Client struct {
	baseURL       string
	probeTimeout  time.Duration
	invokeTimeout time.Duration
	maxIterations int
	budgetMS      int
	probeDelays   []time.Duration
	http          *httpjson.Client
	log           *zap.Logger
	sleep         func(ctx context.Context, d time.Duration) bool
}

type Options struct {
	ProbeTimeout  time.Duration
	InvokeTimeout time.Duration
	MaxIterations int
	BudgetMS      int
	ProbeDelays   []time.Duration
}

func New(log *zap.Logger, hc *httpjson.Client, baseURL string, opt Options) *Client {
	if opt.ProbeTimeout <= 0 {
		opt.ProbeTimeout = 30 * time.Second
	}
	if opt.InvokeTimeout <= 0 {
		opt.InvokeTimeout = 3 * time.Minute
	}
	if opt.MaxIterations <= 0 {
		opt.MaxIterations = 15
	}
	if opt.BudgetMS <= 0 {
		opt.BudgetMS = 120000
	}
	if opt.ProbeDelays == nil {
		opt.ProbeDelays = defaultProbeDelays
	}

	return &Client{
		baseURL:       baseURL,
		probeTimeout:  opt.ProbeTimeout,
		invokeTimeout: opt.InvokeTimeout,
		maxIterations: opt.MaxIterations,
		budgetMS:      opt.BudgetMS,
		probeDelays:   opt.ProbeDelays,
		http:          hc,
		log:           log,
		sleep:         sleepCtx,
	}
}

// Probe checks that the agent process is listening. Any HTTP status counts
// as reachable, 4xx/5xx included; only the transport sentinel 0 does not.
// One attempt per delay slot, sleeping between all attempts but the last.
func (c *Client) Probe(ctx context.Context) bool {
	attempts := len(c.probeDelays)
	for i := 0; i < attempts; i++ {
		status, body := c.http.Get(ctx, c.baseURL+"/", nil, c.probeTimeout)
		if status > 0 {
			c.log.Info("browser agent reachable",
				zap.Int("status", status),
				zap.Int("attempt", i+1),
			)
			return true
		}
		c.log.Warn("browser agent probe failed",
			zap.Int("attempt", i+1),
			zap.Int("attempts", attempts),
			zap.Any("error", body["error"]),
		)
		if i < attempts-1 {
			c.log.Info("retrying after cold-start delay", zap.Duration("delay", c.probeDelays[i]))
			if !c.sleep(ctx, c.probeDelays[i]) {
				return false
			}
		}
	}
	return false
}

// Invoke submits the smoke-test request and normalizes the heterogeneous
// response envelope into a SmokeResult.
func (c *Client) Invoke(ctx context.Context, req domain.SmokeRequest) domain.SmokeResult {
	c.log.Info("calling browser agent",
		zap.String("target", req.TargetURL),
		zap.String("user", req.Email),
		zap.Int("features", len(req.Features)),
	)

	payload := map[string]any{
		"url":           req.TargetURL,
		"credentials":   map[string]string{"email": req.Email, "password": req.Password},
		"features":      req.Features,
		"maxIterations": c.maxIterations,
		"timeout":       c.budgetMS,
	}
	if req.UploadScreenshots {
		payload["uploadScreenshots"] = true
	}

	status, body := c.http.Post(ctx, c.baseURL+"/smoke-test", payload, c.invokeTimeout)

	if status == 0 {
		reason := fmt.Sprintf("Browser agent unreachable: %v", body["error"])
		c.log.Warn("browser agent unreachable", zap.Any("error", body["error"]))
		return domain.SmokeResult{
			Overall:          domain.OverallSkipped,
			Reason:           reason,
			ServiceReachable: domain.BoolPtr(false),
		}
	}

	if !httpjson.OK(status) {
		c.log.Warn("browser agent HTTP error", zap.Int("status", status), zap.Any("body", body))
		return domain.SmokeResult{
			Overall:          domain.OverallError,
			Error:            fmt.Sprintf("Browser agent returned HTTP %d", status),
			Detail:           body,
			ServiceReachable: domain.BoolPtr(true),
		}
	}

	res := normalize(body)
	c.log.Info("browser agent result", zap.String("overall", string(res.Overall)))

	for _, tc := range res.Tests {
		icon := "FAIL"
		if tc.Status == "pass" {
			icon = "PASS"
		}
		c.log.Info(fmt.Sprintf("[%s] %s", icon, tc.Feature), zap.String("notes", truncate(tc.Notes, 80)))
	}
	for _, issue := range res.CriticalIssues {
		c.log.Warn("CRITICAL", zap.String("issue", issue))
	}

	return res
}

// normalize unwraps the optional smokeTestResults envelope, merges the
// top-level screenshot list when the inner object lacks one, and force-sets
// service_reachable: a parsable response proves the service is up.
func normalize(body map[string]any) domain.SmokeResult {
	inner := body
	if wrapped, ok := body["smokeTestResults"].(map[string]any); ok {
		inner = wrapped
	}

	res := domain.SmokeResult{
		Overall:          domain.OverallUnknown,
		ServiceReachable: domain.BoolPtr(true),
	}

	if s, ok := inner["overall"].(string); ok && s != "" {
		res.Overall = domain.Overall(s)
	}

	if arr, ok := inner["tests"].([]any); ok {
		for _, item := range arr {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			res.Tests = append(res.Tests, domain.SmokeTest{
				Feature: str(m["feature"]),
				Status:  str(m["status"]),
				Notes:   str(m["notes"]),
			})
		}
	}

	if arr, ok := inner["critical_issues"].([]any); ok {
		for _, item := range arr {
			if s, ok := item.(string); ok {
				res.CriticalIssues = append(res.CriticalIssues, s)
			}
		}
	}

	res.ScreenshotURLs = strSlice(inner["screenshotUrls"])
	if res.ScreenshotURLs == nil {
		res.ScreenshotURLs = strSlice(body["screenshotUrls"])
	}

	return res
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// truncate cuts at a rune boundary so multi-byte notes never log as mojibake.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

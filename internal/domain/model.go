package domain

type Overall string

const (
	OverallPass          Overall = "pass"
	OverallFail          Overall = "fail"
	OverallError         Overall = "error"
	OverallSkipped       Overall = "skipped"
	OverallNotApplicable Overall = "not_applicable"
	OverallUnknown       Overall = "unknown"
)

// StepResult is the outcome of one HTTP call. Status 0 means the call never
// reached the server (DNS, connect, timeout); the response then carries an
// "error" key. Any other status carries the decoded success or error body.
type StepResult struct {
	Status   int            `json:"status"`
	Response map[string]any `json:"response,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthOutcome is produced once per run by the auth flow and never mutated
// afterwards. TokenVerified is informational only: a broken verify endpoint
// must not flip Success once a token was obtained.
type AuthOutcome struct {
	Success       bool                  `json:"success"`
	Email         string                `json:"email"`
	Password      string                `json:"password"`
	Steps         map[string]StepResult `json:"steps"`
	TokenVerified *bool                 `json:"token_verified,omitempty"`
	Error         string                `json:"error,omitempty"`
}

type PublishErrorKind string

const (
	PublishNotConfigured   PublishErrorKind = "not_configured"
	PublishCommandNotFound PublishErrorKind = "command_not_found"
	PublishNonZeroExit     PublishErrorKind = "non_zero_exit"
	PublishTimedOut        PublishErrorKind = "timed_out"
)

type PublishOutcome struct {
	Success     bool             `json:"success"`
	FrontendURL string           `json:"frontend_url,omitempty"`
	ErrorKind   PublishErrorKind `json:"error_kind,omitempty"`
	Error       string           `json:"error,omitempty"`
}

type SmokeTest struct {
	Feature string `json:"feature"`
	Status  string `json:"status"`
	Notes   string `json:"notes,omitempty"`
}

// SmokeResult is the normalized browser-agent response. ServiceReachable is
// a pointer because stages that never talk to the agent (not_applicable,
// auth failure) leave it unset.
type SmokeResult struct {
	Overall          Overall        `json:"overall"`
	Tests            []SmokeTest    `json:"tests,omitempty"`
	CriticalIssues   []string       `json:"critical_issues,omitempty"`
	ServiceReachable *bool          `json:"service_reachable,omitempty"`
	ScreenshotURLs   []string       `json:"screenshotUrls,omitempty"`
	Reason           string         `json:"reason,omitempty"`
	Error            string         `json:"error,omitempty"`
	Detail           map[string]any `json:"detail,omitempty"`
}

// SmokeRequest is what the pipeline hands the browser agent.
type SmokeRequest struct {
	TargetURL         string
	Email             string
	Password          string
	Features          []string
	UploadScreenshots bool
}

// RunReport is the root aggregate of one pipeline run: assembled once,
// written once. Partial runs still carry every top-level field.
type RunReport struct {
	Timestamp string       `json:"timestamp"`
	RunID     string       `json:"run_id"`
	Auth      *AuthOutcome `json:"auth"`
	Smoke     *SmokeResult `json:"browser_smoke_test"`
	ExitCode  int          `json:"exit_code"`
}

func BoolPtr(b bool) *bool { return &b }

package application

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/domain"
)

type fixtures struct {
	agent    *domain.MockAgent
	auth     *domain.MockAuthFlow
	ports    *domain.MockPublisher
	features *domain.MockFeatures
	frontend *domain.MockFrontend
	report   *domain.MockReportSink
}

func newFixtures() fixtures {
	return fixtures{
		agent: &domain.MockAgent{
			Reachable: true,
			Result:    domain.SmokeResult{Overall: domain.OverallPass, ServiceReachable: domain.BoolPtr(true)},
		},
		auth: &domain.MockAuthFlow{
			Outcome: domain.AuthOutcome{
				Success:  true,
				Email:    "qa@test.example.com",
				Password: "pw",
				Steps:    map[string]domain.StepResult{},
			},
		},
		ports:    &domain.MockPublisher{Outcome: domain.PublishOutcome{Success: true, FrontendURL: "https://c-3000.app.github.dev/login"}},
		features: &domain.MockFeatures{Names: []string{"Login"}},
		frontend: &domain.MockFrontend{Exists: true},
		report:   &domain.MockReportSink{},
	}
}

func (f fixtures) usecase() *SmokeUseCase {
	return NewSmokeUseCase(zap.NewNop(), f.agent, f.auth, f.ports, f.features, f.frontend, f.report)
}

func TestRun_FullPass(t *testing.T) {
	f := newFixtures()
	rep := f.usecase().Run(context.Background())

	if rep.ExitCode != ExitPass {
		t.Fatalf("exit = %d, want 0", rep.ExitCode)
	}
	if rep.Smoke.Overall != domain.OverallPass {
		t.Errorf("smoke overall = %q", rep.Smoke.Overall)
	}
	if f.agent.Invokes != 1 {
		t.Errorf("invokes = %d", f.agent.Invokes)
	}
	if f.agent.LastReq.TargetURL != "https://c-3000.app.github.dev/login" {
		t.Errorf("target = %q", f.agent.LastReq.TargetURL)
	}
	if !f.agent.LastReq.UploadScreenshots {
		t.Error("pipeline run must request screenshots")
	}
	if len(f.report.Reports) != 1 {
		t.Fatalf("report writes = %d", len(f.report.Reports))
	}
}

func TestRun_AuthFailureExits1AndSkipsEverything(t *testing.T) {
	f := newFixtures()
	f.auth.Outcome = domain.AuthOutcome{Success: false, Error: "Registration failed (HTTP 500)"}

	rep := f.usecase().Run(context.Background())

	if rep.ExitCode != ExitFail {
		t.Fatalf("exit = %d, want 1", rep.ExitCode)
	}
	if rep.Smoke.Overall != domain.OverallError {
		t.Errorf("smoke overall = %q", rep.Smoke.Overall)
	}
	if !strings.Contains(rep.Smoke.Error, "Registration failed") {
		t.Errorf("smoke error = %q", rep.Smoke.Error)
	}
	if f.ports.Called != 0 || f.agent.Invokes != 0 {
		t.Error("nothing past auth may run when auth fails")
	}
	if len(f.report.Reports) != 1 {
		t.Error("failed runs must still write a report")
	}
}

func TestRun_NoFrontendIsNotApplicableAndPasses(t *testing.T) {
	f := newFixtures()
	f.frontend.Exists = false

	rep := f.usecase().Run(context.Background())

	if rep.ExitCode != ExitPass {
		t.Fatalf("exit = %d, want 0 (auth alone is a pass)", rep.ExitCode)
	}
	if rep.Smoke.Overall != domain.OverallNotApplicable {
		t.Errorf("smoke overall = %q", rep.Smoke.Overall)
	}
	if f.ports.Called != 0 || f.agent.Invokes != 0 {
		t.Error("ports and agent must not run without a frontend")
	}
}

func TestRun_PortsFailureExits2(t *testing.T) {
	f := newFixtures()
	f.ports.Outcome = domain.PublishOutcome{
		Success:   false,
		ErrorKind: domain.PublishNonZeroExit,
		Error:     "gh ports failed: not logged in",
	}

	rep := f.usecase().Run(context.Background())

	if rep.ExitCode != ExitInfra {
		t.Fatalf("exit = %d, want 2", rep.ExitCode)
	}
	if rep.Smoke.Overall != domain.OverallError || rep.Smoke.Error == "" {
		t.Errorf("smoke = %+v", rep.Smoke)
	}
	if f.agent.Invokes != 0 {
		t.Error("agent must not be invoked after ports failure")
	}
}

func TestRun_ProbeExhaustedSkipsInvocationExits2(t *testing.T) {
	f := newFixtures()
	f.agent.Reachable = false

	rep := f.usecase().Run(context.Background())

	if rep.ExitCode != ExitInfra {
		t.Fatalf("exit = %d, want 2", rep.ExitCode)
	}
	if rep.Smoke.Overall != domain.OverallError {
		t.Errorf("smoke overall = %q", rep.Smoke.Overall)
	}
	if !strings.Contains(rep.Smoke.Reason, "unreachable") {
		t.Errorf("smoke reason = %q", rep.Smoke.Reason)
	}
	if f.agent.Invokes != 0 {
		t.Error("invocation must be skipped when the probe exhausted retries")
	}
}

func TestRun_ProbeFailureLosesToAuthFailure(t *testing.T) {
	f := newFixtures()
	f.agent.Reachable = false
	f.auth.Outcome = domain.AuthOutcome{Success: false, Error: "Login failed (HTTP 401)"}

	rep := f.usecase().Run(context.Background())

	if rep.ExitCode != ExitFail {
		t.Fatalf("exit = %d, want 1 (auth failure takes precedence)", rep.ExitCode)
	}
	if !strings.Contains(rep.Smoke.Error, "Auth failed") {
		t.Errorf("smoke error = %q", rep.Smoke.Error)
	}
}

func TestRun_SmokeOverallMapping(t *testing.T) {
	cases := []struct {
		overall domain.Overall
		exit    int
	}{
		{domain.OverallPass, ExitPass},
		{domain.OverallSkipped, ExitInfra},
		{domain.OverallFail, ExitFail},
		{domain.OverallError, ExitFail},
		{domain.Overall("weird"), ExitFail},
	}

	for _, tc := range cases {
		f := newFixtures()
		f.agent.Result = domain.SmokeResult{Overall: tc.overall}

		rep := f.usecase().Run(context.Background())
		if rep.ExitCode != tc.exit {
			t.Errorf("overall %q: exit = %d, want %d", tc.overall, rep.ExitCode, tc.exit)
		}
	}
}

func TestRun_ReportIsStructurallyComplete(t *testing.T) {
	f := newFixtures()
	f.auth.Outcome = domain.AuthOutcome{Success: false, Error: "boom"}

	rep := f.usecase().Run(context.Background())

	if rep.Timestamp == "" || rep.RunID == "" {
		t.Errorf("report header incomplete: %+v", rep)
	}
	if rep.Auth == nil || rep.Smoke == nil {
		t.Error("report must carry auth and browser stages even on failure")
	}
	if len(f.report.Reports) != 1 {
		t.Fatal("report not persisted")
	}
	if f.report.Reports[0].ExitCode != rep.ExitCode {
		t.Error("persisted report diverges from returned report")
	}
}

func TestRun_ReportSinkFailureDoesNotPanicOrChangeExit(t *testing.T) {
	f := newFixtures()
	f.report.Err = context.DeadlineExceeded

	rep := f.usecase().Run(context.Background())
	if rep.ExitCode != ExitPass {
		t.Fatalf("exit = %d, want 0", rep.ExitCode)
	}
}

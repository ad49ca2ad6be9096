package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/domain"
)

// SmokeUseCase drives the fixed pipeline: agent probe, auth flow, frontend
// check, port publication, feature load, browser invocation. Each stage's
// failure is folded into the report and short-circuits only the stages that
// depend on it; the report is written no matter which branch ran.
type SmokeUseCase struct {
	log      *zap.Logger
	agent    domain.AgentClient
	auth     domain.AuthFlow
	ports    domain.PortPublisher
	features domain.FeatureSource
	frontend domain.FrontendCheck
	report   domain.ReportSink

	now   func() time.Time
	newID func() string
}

func NewSmokeUseCase(
	log *zap.Logger,
	agent domain.AgentClient,
	auth domain.AuthFlow,
	ports domain.PortPublisher,
	features domain.FeatureSource,
	frontend domain.FrontendCheck,
	report domain.ReportSink,
) *SmokeUseCase {
	return &SmokeUseCase{
		log:      log,
		agent:    agent,
		auth:     auth,
		ports:    ports,
		features: features,
		frontend: frontend,
		report:   report,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Exit codes: 0 pass, 1 test-level failure, 2 infrastructure error.
const (
	ExitPass  = 0
	ExitFail  = 1
	ExitInfra = 2
)

func (uc *SmokeUseCase) Run(ctx context.Context) domain.RunReport {
	rep := domain.RunReport{
		Timestamp: uc.now().UTC().Format("2006-01-02T15:04:05Z"),
		RunID:     uc.newID(),
	}

	uc.log.Info("qa smoke test -- deterministic end-to-end verification")

	uc.log.Info("step 0: browser agent connectivity check")
	agentReachable := uc.agent.Probe(ctx)
	if !agentReachable {
		uc.log.Warn("browser agent unreachable after all probe attempts")
		rep.Smoke = &domain.SmokeResult{
			Overall: domain.OverallError,
			Reason:  "Browser agent unreachable after all probe attempts",
		}
	}

	uc.log.Info("step 1: auth flow test")
	auth := uc.auth.Run(ctx)
	rep.Auth = &auth

	switch {
	case !auth.Success:
		uc.log.Warn("auth failed -- cannot proceed with browser test", zap.String("error", auth.Error))
		rep.Smoke = &domain.SmokeResult{
			Overall: domain.OverallError,
			Error:   "Auth failed: " + auth.Error + " -- no valid credentials for browser test",
		}
		rep.ExitCode = ExitFail

	case !uc.frontend.Present():
		uc.log.Info("no frontend directory -- browser smoke test not applicable")
		rep.Smoke = &domain.SmokeResult{Overall: domain.OverallNotApplicable}
		rep.ExitCode = ExitPass

	default:
		uc.log.Info("qa test credentials", zap.String("email", auth.Email))

		uc.log.Info("step 2: make ports public")
		ports := uc.ports.Publish(ctx)
		if !ports.Success {
			uc.log.Warn("ports failed", zap.String("kind", string(ports.ErrorKind)), zap.String("error", ports.Error))
			rep.Smoke = &domain.SmokeResult{
				Overall: domain.OverallError,
				Error:   ports.Error,
			}
			rep.ExitCode = ExitInfra
			break
		}

		uc.log.Info("step 3: read features")
		features := uc.features.Completed()

		if !agentReachable {
			// Smoke stage was pre-set to error at probe time.
			uc.log.Warn("step 4 skipped -- browser agent unreachable")
			rep.ExitCode = ExitInfra
			break
		}

		uc.log.Info("step 4: browser smoke test")
		smoke := uc.agent.Invoke(ctx, domain.SmokeRequest{
			TargetURL:         ports.FrontendURL,
			Email:             auth.Email,
			Password:          auth.Password,
			Features:          features,
			UploadScreenshots: true,
		})
		rep.Smoke = &smoke

		switch smoke.Overall {
		case domain.OverallPass:
			rep.ExitCode = ExitPass
		case domain.OverallSkipped:
			rep.ExitCode = ExitInfra
		default:
			rep.ExitCode = ExitFail
		}
	}

	if err := uc.report.Write(ctx, rep); err != nil {
		uc.log.Warn("could not write results artifact", zap.Error(err))
	}

	authLabel := "FAIL"
	if auth.Success {
		authLabel = "PASS"
	}
	uc.log.Info("run complete",
		zap.String("auth", authLabel),
		zap.String("browser", string(rep.Smoke.Overall)),
		zap.Int("exit_code", rep.ExitCode),
	)

	return rep
}

package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/domain"
)

// DefaultFixtureFeatures is what the seeded fixture exercises.
var DefaultFixtureFeatures = []string{
	"User Authentication",
	"Project Management",
	"Task Management",
	"Dashboard",
	"Navigation",
}

// AgentTestUseCase validates the browser agent itself against the hosted
// fixture: wake it, reset its state, then run a smoke test with the seeded
// credentials. Exit codes: 0 pass, 1 fail, 2 infrastructure.
type AgentTestUseCase struct {
	log      *zap.Logger
	fixture  domain.FixtureAdmin
	agent    domain.AgentClient
	target   string
	creds    domain.Credentials
	features []string
}

func NewAgentTestUseCase(
	log *zap.Logger,
	fixture domain.FixtureAdmin,
	agent domain.AgentClient,
	target string,
	creds domain.Credentials,
	features []string,
) *AgentTestUseCase {
	if features == nil {
		features = DefaultFixtureFeatures
	}
	return &AgentTestUseCase{
		log:      log,
		fixture:  fixture,
		agent:    agent,
		target:   target,
		creds:    creds,
		features: features,
	}
}

func (uc *AgentTestUseCase) Run(ctx context.Context) (domain.SmokeResult, int) {
	uc.log.Info("browser agent test harness")

	if !uc.fixture.Wake(ctx) {
		return domain.SmokeResult{
			Overall: domain.OverallError,
			Error:   "Fixture unreachable",
		}, ExitInfra
	}

	if !uc.fixture.Reset(ctx) {
		return domain.SmokeResult{
			Overall: domain.OverallError,
			Error:   "Fixture reset failed",
		}, ExitInfra
	}

	res := uc.agent.Invoke(ctx, domain.SmokeRequest{
		TargetURL: uc.target,
		Email:     uc.creds.Email,
		Password:  uc.creds.Password,
		Features:  uc.features,
	})

	uc.log.Info("result", zap.String("overall", string(res.Overall)))

	switch res.Overall {
	case domain.OverallPass:
		return res, ExitPass
	case domain.OverallError, domain.OverallSkipped:
		// Skipped means the agent never answered; that is infrastructure,
		// not a failing feature.
		return res, ExitInfra
	default:
		return res, ExitFail
	}
}

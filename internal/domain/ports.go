package domain

import "context"

type AuthFlow interface {
	Run(ctx context.Context) AuthOutcome
}

type PortPublisher interface {
	Publish(ctx context.Context) PublishOutcome
}

type FeatureSource interface {
	Completed() []string
}

type AgentClient interface {
	Probe(ctx context.Context) bool
	Invoke(ctx context.Context, req SmokeRequest) SmokeResult
}

type FrontendCheck interface {
	Present() bool
}

type ReportSink interface {
	Write(ctx context.Context, r RunReport) error
}

type CredentialsSink interface {
	Write(c Credentials) error
}

// FixtureAdmin drives the hosted test fixture for the agent-test harness.
type FixtureAdmin interface {
	Wake(ctx context.Context) bool
	Reset(ctx context.Context) bool
}

package domain

import (
	"context"
)

type MockAuthFlow struct {
	Outcome AuthOutcome
	Called  int
}

func (m *MockAuthFlow) Run(ctx context.Context) AuthOutcome {
	m.Called++
	return m.Outcome
}

type MockPublisher struct {
	Outcome PublishOutcome
	Called  int
}

func (m *MockPublisher) Publish(ctx context.Context) PublishOutcome {
	m.Called++
	return m.Outcome
}

type MockFeatures struct {
	Names []string
}

func (m *MockFeatures) Completed() []string { return m.Names }

type MockAgent struct {
	Reachable bool
	Result    SmokeResult
	Probes    int
	Invokes   int
	LastReq   SmokeRequest
}

func (m *MockAgent) Probe(ctx context.Context) bool {
	m.Probes++
	return m.Reachable
}

func (m *MockAgent) Invoke(ctx context.Context, req SmokeRequest) SmokeResult {
	m.Invokes++
	m.LastReq = req
	return m.Result
}

type MockFrontend struct {
	Exists bool
}

func (m *MockFrontend) Present() bool { return m.Exists }

type MockReportSink struct {
	Reports []RunReport
	Err     error
}

func (m *MockReportSink) Write(ctx context.Context, r RunReport) error {
	if m.Err != nil {
		return m.Err
	}
	m.Reports = append(m.Reports, r)
	return nil
}

type MockCredentialsSink struct {
	Saved []Credentials
	Err   error
}

func (m *MockCredentialsSink) Write(c Credentials) error {
	if m.Err != nil {
		return m.Err
	}
	m.Saved = append(m.Saved, c)
	return nil
}

type MockFixtureAdmin struct {
	Awake   bool
	ResetOK bool
	Wakes   int
	Resets  int
}

func (m *MockFixtureAdmin) Wake(ctx context.Context) bool {
	m.Wakes++
	return m.Awake
}

func (m *MockFixtureAdmin) Reset(ctx context.Context) bool {
	m.Resets++
	return m.ResetOK
}

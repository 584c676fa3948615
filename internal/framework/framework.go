// Package framework describes the test framework runtime the session bridge drives:
// the three lifecycle callbacks it emits, the run entry points it exposes and the
// environment registry of the computation library under test.
package framework

import "context"

// SuiteInfo is delivered once before any spec runs
type SuiteInfo struct {
	TotalSpecsDefined int `json:"totalSpecsDefined"`
}

// ExpectationResult is one assertion outcome attached to a spec result
type ExpectationResult struct {
	MatcherName string `json:"matcherName,omitempty"`
	Message     string `json:"message"`
	Stack       string `json:"stack"`
	Passed      bool   `json:"passed"`
}

// SpecResult is delivered once per completed spec
type SpecResult struct {
	ID                 string              `json:"id,omitempty"`
	Description        string              `json:"description,omitempty"`
	FullName           string              `json:"fullName"`
	SuiteName          string              `json:"suiteName,omitempty"`
	Status             string              `json:"status,omitempty"`
	FailedExpectations []ExpectationResult `json:"failedExpectations"`
}

// Reporter receives the lifecycle events of one run, in order:
// JasmineStarted once, SpecDone per completed spec, JasmineDone once.
type Reporter interface {
	JasmineStarted(info SuiteInfo)
	SpecDone(result SpecResult)
	JasmineDone()
}

// Runtime is a handle on the test framework
type Runtime interface {
	// AddReporter registers a sink for lifecycle events
	AddReporter(r Reporter)
	// Load imports the suite so its specs register with the framework
	Load(suite string) error
	// Execute begins the run. Events are delivered asynchronously after it returns.
	Execute(ctx context.Context) error
}

// TestEnv is a named execution profile: target backend plus feature flag overrides.
// Flag values are booleans or numbers.
type TestEnv struct {
	Name        string         `json:"name" yaml:"name"`
	BackendName string         `json:"backendName" yaml:"backendName"`
	Flags       map[string]any `json:"flags" yaml:"flags"`
}

// EnvRegistry is the environment registry of the computation library under test
type EnvRegistry interface {
	// ActiveBackend returns the backend the library is currently configured for
	ActiveBackend() (string, error)
	// PlatformName describes the runtime the library executes under
	PlatformName() string
	// SetTestEnvs registers the environments the imported suite runs against
	SetTestEnvs(envs []TestEnv) error
}

// ErrorMode toggles whether the host treats uncaught errors as fatal
type ErrorMode interface {
	ReportErrorsAsFatal() bool
	SetReportErrorsAsFatal(fatal bool)
}

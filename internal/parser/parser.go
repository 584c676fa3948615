package parser

import "specview/internal/framework"

// Parser turns one line of framework output into a lifecycle event
type Parser interface {
	ParseLine(line string) (Event, error)
}

// Kind names a lifecycle event on the wire
type Kind string

const (
	KindSuiteStarted  Kind = "jasmineStarted"
	KindSpecDone      Kind = "specDone"
	KindSuiteDone     Kind = "jasmineDone"
	KindUncaughtError Kind = "uncaughtError"
)

// Event is a decoded wire event. Only the field matching Kind is set.
type Event struct {
	Kind    Kind
	Suite   framework.SuiteInfo
	Spec    framework.SpecResult
	Message string
}

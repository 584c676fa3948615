// Package session owns the state of one test run. Lifecycle events are folded into a
// domain.Session by Reduce; the Controller applies them, runs setup and hands out
// read-only snapshots.
package session

import (
	"errors"
	"fmt"

	"specview/internal/domain"
)

// ErrProtocolViolation marks an event that arrived out of the expected order
var ErrProtocolViolation = errors.New("protocol violation")

// Event is a state delta produced by the reporter
type Event interface {
	eventName() string
}

// SuiteStarted moves the session to running with the declared spec count
type SuiteStarted struct {
	DeclaredSpecs int
}

// SpecPassed records a spec that completed with no failed expectations.
// SpecID is the framework's spec identity; TestName stands in for it when empty.
type SpecPassed struct {
	SpecID   string
	TestName string
}

// SpecFailed records a spec with at least one failed expectation
type SpecFailed struct {
	SpecID string
	Record domain.FailureRecord
}

// SuiteDone completes the session
type SuiteDone struct{}

func (SuiteStarted) eventName() string { return "suite-started" }
func (SpecPassed) eventName() string   { return "spec-passed" }
func (SpecFailed) eventName() string   { return "spec-failed" }
func (SuiteDone) eventName() string    { return "suite-done" }

// Reduce applies e to s and returns the next state.
// s is never modified. On error the returned state is s unchanged.
func Reduce(s domain.Session, e Event) (domain.Session, error) {
	switch ev := e.(type) {
	case SuiteStarted:
		if s.Phase != domain.PhaseNotStarted {
			return s, violation(e, s.Phase)
		}
		if ev.DeclaredSpecs < 0 {
			return s, fmt.Errorf("%w: negative spec count %d", ErrProtocolViolation, ev.DeclaredSpecs)
		}
		s.Phase = domain.PhaseRunning
		s.TotalTests = ev.DeclaredSpecs
		return s, nil

	case SpecPassed:
		key := specKey(ev.SpecID, ev.TestName)
		if err := checkSpec(s, e, key, ev.TestName); err != nil {
			return s, err
		}
		s = s.WithClassified(key)
		s.PassedCount++
		return s, nil

	case SpecFailed:
		key := specKey(ev.SpecID, ev.Record.TestName)
		if err := checkSpec(s, e, key, ev.Record.TestName); err != nil {
			return s, err
		}
		if len(ev.Record.Expectations) == 0 {
			return s, fmt.Errorf("%w: failure for %q has no expectations", ErrProtocolViolation, ev.Record.TestName)
		}
		s = s.WithClassified(key)
		s = s.WithFailure(ev.Record.Clone())
		return s, nil

	case SuiteDone:
		if s.Phase != domain.PhaseRunning {
			return s, violation(e, s.Phase)
		}
		s.Phase = domain.PhaseComplete
		return s, nil
	}

	return s, fmt.Errorf("%w: unknown event %T", ErrProtocolViolation, e)
}

// specKey identifies a spec for exactly-once classification. Full names may repeat
// within a suite, so the framework id takes precedence.
func specKey(id, testName string) string {
	if id != "" {
		return "id:" + id
	}
	return "name:" + testName
}

func checkSpec(s domain.Session, e Event, key, testName string) error {
	if s.Phase != domain.PhaseRunning {
		return violation(e, s.Phase)
	}
	if testName == "" {
		return fmt.Errorf("%w: %s without a test name", ErrProtocolViolation, eventName(e))
	}
	if s.Classified(key) {
		return fmt.Errorf("%w: %q (%s) already reported", ErrProtocolViolation, testName, key)
	}
	return nil
}

func violation(e Event, phase domain.Phase) error {
	return fmt.Errorf("%w: %s while %s", ErrProtocolViolation, eventName(e), phase)
}

func eventName(e Event) string {
	if e == nil {
		return "<nil>"
	}
	return e.eventName()
}

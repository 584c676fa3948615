// Package reporter adapts framework lifecycle callbacks into session events.
package reporter

import (
	"encoding/json"
	"fmt"

	"specview/internal/domain"
	"specview/internal/framework"
	"specview/internal/session"

	"go.uber.org/zap"
)

// Sink applies session events. *session.Controller satisfies it.
type Sink interface {
	Apply(e session.Event) error
}

// Reporter is registered with the framework runtime. Each callback becomes exactly one
// session event. Callbacks never panic back into the framework.
type Reporter struct {
	sink   Sink
	mode   framework.ErrorMode
	logger *zap.Logger

	savedFatal bool
	saved      bool
}

var _ framework.Reporter = (*Reporter)(nil)

// New creates a Reporter. mode may be nil when the host has no error reporting switch.
func New(sink Sink, mode framework.ErrorMode, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		sink:   sink,
		mode:   mode,
		logger: logger,
	}
}

// JasmineStarted marks the session running with the statically declared spec count
func (r *Reporter) JasmineStarted(info framework.SuiteInfo) {
	defer r.guard("jasmineStarted")

	r.logger.Info("starting tests", zap.Int("totalSpecsDefined", info.TotalSpecsDefined))
	if err := r.sink.Apply(session.SuiteStarted{DeclaredSpecs: info.TotalSpecsDefined}); err != nil {
		return
	}

	if r.mode != nil && !r.saved {
		r.savedFatal = r.mode.ReportErrorsAsFatal()
		r.saved = true
		r.mode.SetReportErrorsAsFatal(false)
	}
}

// SpecDone classifies one completed spec: no failed expectations is a pass, anything else
// is a single failure carrying every failed expectation.
func (r *Reporter) SpecDone(result framework.SpecResult) {
	defer r.guard("specDone")

	if len(result.FailedExpectations) == 0 {
		_ = r.sink.Apply(session.SpecPassed{SpecID: result.ID, TestName: result.FullName})
		return
	}

	record := toFailureRecord(result)
	if err := r.sink.Apply(session.SpecFailed{SpecID: result.ID, Record: record}); err != nil {
		return
	}
	r.logFailure(record)
}

// JasmineDone completes the session and restores the host error mode
func (r *Reporter) JasmineDone() {
	defer r.guard("jasmineDone")

	// Restore first: completion releases anyone waiting on the session.
	if r.mode != nil && r.saved {
		r.mode.SetReportErrorsAsFatal(r.savedFatal)
		r.saved = false
	}
	_ = r.sink.Apply(session.SuiteDone{})
}

func toFailureRecord(result framework.SpecResult) domain.FailureRecord {
	expectations := make([]domain.Expectation, len(result.FailedExpectations))
	for i, f := range result.FailedExpectations {
		expectations[i] = domain.Expectation{
			Message: f.Message,
			Stack:   f.Stack,
		}
	}
	return domain.FailureRecord{
		SuiteName:    result.SuiteName,
		TestName:     result.FullName,
		Expectations: expectations,
	}
}

// logFailure writes the record in readable form at warn level
func (r *Reporter) logFailure(record domain.FailureRecord) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		r.logger.Warn("Test Failure", zap.String("test", record.TestName), zap.Error(err))
		return
	}
	r.logger.Warn("Test Failure", zap.String("test", record.TestName))
	r.logger.Warn(string(data))
}

func (r *Reporter) guard(callback string) {
	if v := recover(); v != nil {
		r.logger.Error("Reporter callback panicked",
			zap.String("callback", callback),
			zap.String("panic", fmt.Sprint(v)))
	}
}

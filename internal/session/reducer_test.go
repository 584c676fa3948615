package session

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"specview/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failed(name string, messages ...string) SpecFailed {
	exps := make([]domain.Expectation, len(messages))
	for i, m := range messages {
		exps[i] = domain.Expectation{Message: m, Stack: "stack of " + m}
	}
	return SpecFailed{Record: domain.FailureRecord{TestName: name, Expectations: exps}}
}

func withID(id string, e SpecFailed) SpecFailed {
	e.SpecID = id
	return e
}

func reduceAll(t *testing.T, events ...Event) domain.Session {
	t.Helper()
	return reduceFrom(t, domain.Session{}, events...)
}

func reduceFrom(t *testing.T, s domain.Session, events ...Event) domain.Session {
	t.Helper()
	for _, e := range events {
		next, err := Reduce(s, e)
		require.NoError(t, err, "event %T", e)
		s = next
	}
	return s
}

func TestReduce_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		events   []Event
		total    int
		passed   int
		failures []string
	}{
		{
			name: "mixed results",
			events: []Event{
				SuiteStarted{DeclaredSpecs: 3},
				SpecPassed{TestName: "a"},
				failed("b", "expected 1 to be 2"),
				SpecPassed{TestName: "c"},
				SuiteDone{},
			},
			total:    3,
			passed:   2,
			failures: []string{"b"},
		},
		{
			name:   "empty suite",
			events: []Event{SuiteStarted{DeclaredSpecs: 0}, SuiteDone{}},
		},
		{
			name: "failures keep completion order",
			events: []Event{
				SuiteStarted{DeclaredSpecs: 3},
				failed("z", "m1"),
				failed("a", "m2"),
				failed("m", "m3"),
				SuiteDone{},
			},
			total:    3,
			failures: []string{"z", "a", "m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := reduceAll(t, tt.events...)

			assert.Equal(t, domain.PhaseComplete, s.Phase)
			assert.Equal(t, tt.total, s.TotalTests)
			assert.Equal(t, tt.passed, s.PassedCount)
			var names []string
			for _, f := range s.Failures {
				names = append(names, f.TestName)
			}
			assert.Equal(t, tt.failures, names)
			assert.Equal(t, s.TotalTests, s.Completed())
		})
	}
}

func TestReduce_MultipleExpectationsOneRecord(t *testing.T) {
	s := reduceAll(t,
		SuiteStarted{DeclaredSpecs: 1},
		failed("two asserts", "first", "second"),
	)

	require.Len(t, s.Failures, 1)
	assert.Equal(t, []domain.Expectation{
		{Message: "first", Stack: "stack of first"},
		{Message: "second", Stack: "stack of second"},
	}, s.Failures[0].Expectations)
}

func TestReduce_ProtocolViolations(t *testing.T) {
	running := reduceAll(t, SuiteStarted{DeclaredSpecs: 2}, SpecPassed{TestName: "a"})
	runningWithID := reduceAll(t, SuiteStarted{DeclaredSpecs: 2}, SpecPassed{SpecID: "spec0", TestName: "a"})
	complete := reduceAll(t, SuiteStarted{DeclaredSpecs: 0}, SuiteDone{})

	tests := []struct {
		name  string
		state domain.Session
		event Event
	}{
		{name: "spec before start", state: domain.Session{}, event: SpecPassed{TestName: "a"}},
		{name: "failure before start", state: domain.Session{}, event: failed("a", "m")},
		{name: "done before start", state: domain.Session{}, event: SuiteDone{}},
		{name: "second start", state: running, event: SuiteStarted{DeclaredSpecs: 5}},
		{name: "negative count", state: domain.Session{}, event: SuiteStarted{DeclaredSpecs: -1}},
		{name: "duplicate pass without id", state: running, event: SpecPassed{TestName: "a"}},
		{name: "pass then fail without id", state: running, event: failed("a", "m")},
		{name: "duplicate spec id", state: runningWithID, event: SpecPassed{SpecID: "spec0", TestName: "renamed"}},
		{name: "failure for reported spec id", state: runningWithID, event: withID("spec0", failed("a", "m"))},
		{name: "unnamed spec", state: running, event: SpecPassed{}},
		{name: "failure without expectations", state: running, event: SpecFailed{Record: domain.FailureRecord{TestName: "b"}}},
		{name: "spec after done", state: complete, event: SpecPassed{TestName: "late"}},
		{name: "start after done", state: complete, event: SuiteStarted{DeclaredSpecs: 1}},
		{name: "done after done", state: complete, event: SuiteDone{}},
		{name: "nil event", state: running, event: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Reduce(tt.state, tt.event)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrProtocolViolation), "got %v", err)
			assert.Equal(t, tt.state, next)
		})
	}
}

func TestReduce_DoesNotModifyInput(t *testing.T) {
	before := reduceAll(t, SuiteStarted{DeclaredSpecs: 3}, failed("a", "m"))
	prefix := append([]domain.FailureRecord(nil), before.Failures...)

	after, err := Reduce(before, failed("b", "n"))
	require.NoError(t, err)
	_, err = Reduce(before, failed("c", "o"))
	require.NoError(t, err)

	assert.Equal(t, prefix, before.Failures)
	assert.False(t, before.Classified("b"))
	assert.True(t, after.Classified("b"))
	require.Len(t, after.Failures, 2)
	assert.Equal(t, prefix, after.Failures[:1])
}

func TestReduce_OverCountAccepted(t *testing.T) {
	s := reduceAll(t,
		SuiteStarted{DeclaredSpecs: 1},
		SpecPassed{TestName: "a"},
		SpecPassed{TestName: "b"},
		SuiteDone{},
	)
	assert.Equal(t, 2, s.PassedCount)
	assert.Equal(t, 1, s.TotalTests)
}

func TestReduce_RepeatedFullNames(t *testing.T) {
	tests := []struct {
		name     string
		events   []Event
		passed   int
		failures int
	}{
		{
			name: "pass then fail",
			events: []Event{
				SpecPassed{SpecID: "spec0", TestName: "math adds"},
				withID("spec1", failed("math adds", "expected 3 to be 4")),
			},
			passed:   1,
			failures: 1,
		},
		{
			name: "both fail",
			events: []Event{
				withID("spec0", failed("math adds", "m1")),
				withID("spec1", failed("math adds", "m2")),
			},
			failures: 2,
		},
		{
			name: "both pass",
			events: []Event{
				SpecPassed{SpecID: "spec0", TestName: "math adds"},
				SpecPassed{SpecID: "spec1", TestName: "math adds"},
			},
			passed: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := append([]Event{SuiteStarted{DeclaredSpecs: 2}}, tt.events...)
			s := reduceAll(t, append(events, SuiteDone{})...)

			assert.Equal(t, tt.passed, s.PassedCount)
			assert.Len(t, s.Failures, tt.failures)
			assert.Equal(t, s.TotalTests, s.Completed())
		})
	}
}

func TestReduce_BranchesAreIndependent(t *testing.T) {
	base := reduceAll(t, SuiteStarted{DeclaredSpecs: 4}, SpecPassed{SpecID: "s0", TestName: "a"}, withID("s1", failed("b", "m")))

	left := reduceFrom(t, base, SpecPassed{SpecID: "s2", TestName: "c"}, withID("s3", failed("d", "n")))
	right := reduceFrom(t, base, withID("s2", failed("c", "o")), SpecPassed{SpecID: "s3", TestName: "d"})

	// Each branch may classify the same specs differently without seeing the other.
	assert.Equal(t, 2, left.PassedCount)
	assert.Equal(t, 2, right.PassedCount)
	require.Len(t, left.Failures, 2)
	require.Len(t, right.Failures, 2)
	assert.Equal(t, "d", left.Failures[1].TestName)
	assert.Equal(t, "c", right.Failures[1].TestName)

	require.Len(t, base.Failures, 1)
	assert.False(t, base.Classified(specKey("s2", "c")))
	assert.True(t, left.Classified(specKey("s3", "d")))

	// Appending to an exposed slice never reaches the session.
	grown := append(left.Failures, domain.FailureRecord{TestName: "extra"})
	assert.Len(t, grown, 3)
	next := reduceFrom(t, left, SuiteDone{})
	assert.Len(t, next.Failures, 2)
}

func TestReduce_LargeSuite(t *testing.T) {
	const specs = 20000

	s, err := Reduce(domain.Session{}, SuiteStarted{DeclaredSpecs: specs})
	require.NoError(t, err)
	for i := 0; i < specs; i++ {
		var e Event = SpecPassed{SpecID: fmt.Sprintf("spec%d", i), TestName: "same name"}
		if i%10 == 0 {
			e = withID(fmt.Sprintf("spec%d", i), failed("same name", "m"))
		}
		s, err = Reduce(s, e)
		require.NoError(t, err)
	}
	s, err = Reduce(s, SuiteDone{})
	require.NoError(t, err)

	assert.Equal(t, specs, s.Completed())
	assert.Len(t, s.Failures, specs/10)
}

func BenchmarkReduce(b *testing.B) {
	for n := 0; n < b.N; n++ {
		s, _ := Reduce(domain.Session{}, SuiteStarted{DeclaredSpecs: 10000})
		for i := 0; i < 10000; i++ {
			id := strconv.Itoa(i)
			if i%10 == 0 {
				s, _ = Reduce(s, withID(id, failed("spec "+id, "m")))
				continue
			}
			s, _ = Reduce(s, SpecPassed{SpecID: id, TestName: "spec " + id})
		}
	}
}

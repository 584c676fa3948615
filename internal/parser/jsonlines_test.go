package parser

import (
	"errors"
	"testing"

	"specview/internal/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLinesParser_ParseLine(t *testing.T) {
	p := NewJSONLinesParser()

	tests := []struct {
		name     string
		line     string
		expected Event
	}{
		{
			name:     "suite started",
			line:     `{"event":"jasmineStarted","totalSpecsDefined":42}`,
			expected: Event{Kind: KindSuiteStarted, Suite: framework.SuiteInfo{TotalSpecsDefined: 42}},
		},
		{
			name: "spec done with failures",
			line: `  {"event":"specDone","fullName":"tensor add","status":"failed","failedExpectations":[{"matcherName":"toBe","message":"expected 1 to be 2","stack":"Error\n    at add.js:3","passed":false}]}`,
			expected: Event{Kind: KindSpecDone, Spec: framework.SpecResult{
				FullName: "tensor add",
				Status:   "failed",
				FailedExpectations: []framework.ExpectationResult{
					{MatcherName: "toBe", Message: "expected 1 to be 2", Stack: "Error\n    at add.js:3"},
				},
			}},
		},
		{
			name:     "spec done without failures",
			line:     `{"event":"specDone","fullName":"tensor sub"}`,
			expected: Event{Kind: KindSpecDone, Spec: framework.SpecResult{FullName: "tensor sub"}},
		},
		{
			name:     "suite done",
			line:     `{"event":"jasmineDone","overallStatus":"failed"}`,
			expected: Event{Kind: KindSuiteDone},
		},
		{
			name:     "uncaught error",
			line:     `{"event":"uncaughtError","message":"ReferenceError: x is not defined"}`,
			expected: Event{Kind: KindUncaughtError, Message: "ReferenceError: x is not defined"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := p.ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, event)
		})
	}
}

func TestJSONLinesParser_NotEvents(t *testing.T) {
	p := NewJSONLinesParser()

	for _, line := range []string{
		"",
		"Started",
		"console.log output",
		`{"unrelated":true}`,
		`{not json`,
	} {
		_, err := p.ParseLine(line)
		assert.True(t, errors.Is(err, ErrNotEvent), "line %q: got %v", line, err)
	}

	_, err := p.ParseLine(`{"event":"suiteStarted"}`)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotEvent))
}

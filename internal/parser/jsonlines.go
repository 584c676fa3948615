package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"specview/internal/framework"
)

// ErrNotEvent is returned for output lines that carry no event
var ErrNotEvent = errors.New("line is not an event")

// JSONLinesParser parses the one-object-per-line reporter protocol:
//
//	{"event":"jasmineStarted","totalSpecsDefined":3}
//	{"event":"specDone","fullName":"a b","failedExpectations":[{"message":"...","stack":"..."}]}
//	{"event":"jasmineDone"}
//	{"event":"uncaughtError","message":"..."}
type JSONLinesParser struct{}

// NewJSONLinesParser creates a new JSONLinesParser
func NewJSONLinesParser() *JSONLinesParser {
	return &JSONLinesParser{}
}

type wireLine struct {
	Event   Kind   `json:"event"`
	Message string `json:"message"`

	framework.SuiteInfo
	framework.SpecResult
}

// ParseLine decodes a single line. Plain output lines yield ErrNotEvent.
func (p *JSONLinesParser) ParseLine(line string) (Event, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Event{}, ErrNotEvent
	}

	var wire wireLine
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrNotEvent, err)
	}

	switch wire.Event {
	case KindSuiteStarted:
		return Event{Kind: wire.Event, Suite: wire.SuiteInfo}, nil
	case KindSpecDone:
		return Event{Kind: wire.Event, Spec: wire.SpecResult}, nil
	case KindSuiteDone:
		return Event{Kind: wire.Event}, nil
	case KindUncaughtError:
		return Event{Kind: wire.Event, Message: wire.Message}, nil
	case "":
		return Event{}, ErrNotEvent
	default:
		return Event{}, fmt.Errorf("unknown event %q", wire.Event)
	}
}

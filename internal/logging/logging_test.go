package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		debug   bool
	}{
		{name: "quiet", verbose: false, debug: false},
		{name: "verbose", verbose: true, debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.verbose)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := logger.Core().Enabled(zap.DebugLevel); got != tt.debug {
				t.Errorf("expected debug enabled %v, got %v", tt.debug, got)
			}
			if !logger.Core().Enabled(zap.WarnLevel) {
				t.Error("warnings should always be enabled")
			}
		})
	}
}

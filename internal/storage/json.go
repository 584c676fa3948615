package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"specview/internal/domain"
)

// Report is the exported form of a session
type Report struct {
	Meta    ReportMeta      `json:"meta"`
	Session domain.Snapshot `json:"session"`
}

// ReportMeta contains metadata about the export
type ReportMeta struct {
	Platform    string `json:"platform"`
	FailedTests int    `json:"failed_tests"`
	Timestamp   string `json:"timestamp"`
}

// Save writes snap to the configured JSON file
func (s *JSONStorage) Save(snap domain.Snapshot, platform string) error {
	report := Report{
		Meta: ReportMeta{
			Platform:    platform,
			FailedTests: len(snap.FailedTests),
			Timestamp:   time.Now().Format(time.RFC3339),
		},
		Session: snap,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

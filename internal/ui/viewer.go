package ui

import "specview/internal/domain"

// Viewer displays the failures of a session in an interactive TUI
type Viewer interface {
	View(snap domain.Snapshot) error
}

package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"specview/internal/domain"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar renders session progress. It observes the session and creates the bar once
// the suite declares its size.
type ProgressBar struct {
	mu     sync.Mutex
	writer io.Writer
	bar    *progressbar.ProgressBar
	done   bool
}

// NewProgressBar creates a new progress bar writing to w (stderr when nil)
func NewProgressBar(w io.Writer) *ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return &ProgressBar{writer: w}
}

func (p *ProgressBar) newBar(count int) *progressbar.ProgressBar {
	return progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.writer, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Observe updates the bar from a session snapshot
func (p *ProgressBar) Observe(snap domain.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done || !snap.TestsStarted || snap.TotalTests <= 0 {
		return
	}
	if p.bar == nil {
		p.bar = p.newBar(snap.TotalTests)
	}
	p.update(snap.PassedTests, len(snap.FailedTests))
	if snap.TestsComplete {
		_ = p.bar.Finish()
		p.done = true
	}
}

// update updates the progress bar with success and failure counts
func (p *ProgressBar) update(successCount, failCount int) {
	completed := successCount + failCount
	if max := p.bar.GetMax(); completed > max {
		// The framework reported more specs than it declared.
		p.bar.ChangeMax(completed)
	}
	_ = p.bar.Set(completed)
	p.bar.Describe(describe(successCount, failCount))
}

func describe(successCount, failCount int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[success: %d", successCount) +
		" | " +
		color.RedString("failed: %d]", failCount)
}

package ui

import (
	"fmt"
	"strings"

	"specview/internal/domain"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const maxStackLines = 10

// FailureViewer displays session failures in an interactive TUI
type FailureViewer struct{}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer() *FailureViewer {
	return &FailureViewer{}
}

// View displays the failures of snap. Marking a failure resolved only lasts while the
// viewer is open.
func (fv *FailureViewer) View(snap domain.Snapshot) error {
	failures := snap.FailedTests
	if len(failures) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	resolved := make(map[int]bool)

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	for i := range failures {
		list.AddItem(listItemText(failures[i], i, false), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	// list on left (1/3), details on right (2/3)
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		unresolved := 0
		for i := range failures {
			if !resolved[i] {
				unresolved++
			}
		}
		headerView.SetText(fmt.Sprintf(
			" Failed Tests (%d of %d, %d unresolved) | backend=%s | ↑↓ navigate, [yellow]R[white] resolve, → details, ← back, Ctrl+C exit ",
			len(failures), snap.TotalTests, unresolved, snap.BackendName))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(failures) {
			statsView.SetText(formatFailureStats(failures[index], len(failures), index+1))
			detailsView.SetText(formatFailureDetails(failures[index]))
			detailsView.ScrollToBeginning()
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(failures) {
					resolved[index] = !resolved[index]
					list.SetItemText(index, listItemText(failures[index], index, resolved[index]), "")
					updateHeader()
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func listItemText(failure domain.FailureRecord, index int, resolved bool) string {
	name := tview.Escape(failure.TestName)
	if resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
}

// formatFailureDetails formats a failure using tview color tags
func formatFailureDetails(failure domain.FailureRecord) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "[red]✗ Test: %s[white]\n\n", tview.Escape(failure.TestName))
	if failure.SuiteName != "" {
		fmt.Fprintf(&builder, "[cyan]Suite: %s[white]\n\n", tview.Escape(failure.SuiteName))
	}

	for i, exp := range failure.Expectations {
		fmt.Fprintf(&builder, "[yellow]Expectation %d of %d:[white]\n%s\n\n", i+1, len(failure.Expectations), tview.Escape(exp.Message))

		if exp.Stack == "" {
			continue
		}
		lines := strings.Split(strings.TrimRight(exp.Stack, "\n"), "\n")
		builder.WriteString("[yellow]Stack Trace:[white]\n")
		for j, line := range lines {
			if j == maxStackLines {
				fmt.Fprintf(&builder, "  [gray]... and %d more lines[white]\n", len(lines)-maxStackLines)
				break
			}
			fmt.Fprintf(&builder, "  %s\n", tview.Escape(strings.TrimSpace(line)))
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

// formatFailureStats formats the stats header for a failure
func formatFailureStats(failure domain.FailureRecord, total, number int) string {
	suite := failure.SuiteName
	if suite == "" {
		suite = noSuite
	}
	return fmt.Sprintf("[cyan]failure:[white] [yellow]%d/%d[white]  [cyan]suite:[white] %s  [cyan]expectations:[white] %d\n",
		number, total, tview.Escape(suite), len(failure.Expectations))
}

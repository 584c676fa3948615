package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"specview/internal/domain"

	"github.com/fatih/color"
)

const noSuite = "(no suite)"

// Formatter formats and displays output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to out (stdout when nil)
func NewFormatter(out io.Writer) *Formatter {
	if out == nil {
		out = os.Stdout
	}
	return &Formatter{out: out}
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// PrintSummary displays the session info, counters and a tree of failures
func (f *Formatter) PrintSummary(snap domain.Snapshot, platform string) {
	fmt.Fprint(f.out, "\n")
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                     Test Session Report                       ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	backend := snap.BackendName
	if backend == "" {
		backend = "undefined"
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	f.row("Backend", white, backend)
	f.row("Tests Complete", white, fmt.Sprint(snap.TestsComplete))
	f.row("Platform", white, platform)
	f.row("Passed Tests", green, fmt.Sprintf("%d of %d", snap.PassedTests, snap.TotalTests))
	f.row("Failed Tests", red, fmt.Sprint(len(snap.FailedTests)))
	f.rowLast("Session", white, snap.SessionID)
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Fprintln(f.out)
	switch {
	case snap.SetupError != "":
		red.Fprintf(f.out, "✗ Session setup failed: %s\n", snap.SetupError)
	case !snap.TestsComplete:
		yellow.Fprintf(f.out, "! Session did not complete (%s)\n", snap.Phase)
	case len(snap.FailedTests) == 0:
		green.Fprintln(f.out, "✓ All tests passed!")
	default:
		red.Fprintf(f.out, "✗ %d of %d test(s) failed\n", len(snap.FailedTests), snap.TotalTests)
	}

	if len(snap.FailedTests) > 0 {
		fmt.Fprintln(f.out)
		f.printFailureTree(snap.FailedTests)
	}
}

func (f *Formatter) row(label string, c *color.Color, value string) {
	f.rowLast(label, c, value)
	fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
}

func (f *Formatter) rowLast(label string, c *color.Color, value string) {
	fmt.Fprintf(f.out, "│ %-31s │ ", label)
	c.Fprintf(f.out, "%-27s", value)
	fmt.Fprintln(f.out, " │")
}

// suiteGroup holds the failures of one suite in completion order
type suiteGroup struct {
	name     string
	failures []domain.FailureRecord
}

// groupBySuite keeps suites in the order their first failure completed
func groupBySuite(failures []domain.FailureRecord) []suiteGroup {
	var groups []suiteGroup
	index := make(map[string]int)
	for _, failure := range failures {
		name := failure.SuiteName
		if name == "" {
			name = noSuite
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, suiteGroup{name: name})
		}
		groups[i].failures = append(groups[i].failures, failure)
	}
	return groups
}

// printFailureTree prints suites, their failed tests and the expectation messages
func (f *Formatter) printFailureTree(failures []domain.FailureRecord) {
	groups := groupBySuite(failures)
	for i, group := range groups {
		lastGroup := i == len(groups)-1
		branch, indent := "├── ", "│   "
		if lastGroup {
			branch, indent = "└── ", "    "
		}
		cyan.Fprintf(f.out, "%s%s\n", branch, group.name)

		for j, failure := range group.failures {
			lastCase := j == len(group.failures)-1
			caseBranch, caseIndent := "├── ", "│   "
			if lastCase {
				caseBranch, caseIndent = "└── ", "    "
			}
			red.Fprintf(f.out, "%s%s%s\n", indent, caseBranch, failure.TestName)
			for _, exp := range failure.Expectations {
				fmt.Fprintf(f.out, "%s%s  %s\n", indent, caseIndent, firstLine(exp.Message))
			}
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// PrintEnvs lists the test environments a run would register
func (f *Formatter) PrintEnvs(active string, known []string, envs []EnvView) {
	green.Fprintf(f.out, "Active backend: %s\n", active)
	fmt.Fprintf(f.out, "Known backends: %s\n\n", strings.Join(known, ", "))

	for i, env := range envs {
		branch, indent := "├── ", "│   "
		if i == len(envs)-1 {
			branch, indent = "└── ", "    "
		}
		cyan.Fprintf(f.out, "%s%s ", branch, env.Name)
		yellow.Fprintf(f.out, "(%s)\n", env.Backend)
		if len(env.Flags) == 0 {
			fmt.Fprintf(f.out, "%s└── (no flag overrides)\n", indent)
			continue
		}
		for j, flag := range env.Flags {
			flagBranch := "├── "
			if j == len(env.Flags)-1 {
				flagBranch = "└── "
			}
			fmt.Fprintf(f.out, "%s%s%s\n", indent, flagBranch, flag)
		}
	}
}

// EnvView is a test environment prepared for display, flags rendered as name=value
type EnvView struct {
	Name    string
	Backend string
	Flags   []string
}

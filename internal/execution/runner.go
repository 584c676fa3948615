package execution

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"specview/internal/framework"
	"specview/internal/parser"

	"go.uber.org/zap"
)

const (
	// TestEnvsVar carries the registered test environments to the framework process as JSON
	TestEnvsVar = "SPECVIEW_TEST_ENVS"
	// RandomOrderVar asks the framework to run specs in declaration order
	RandomOrderVar = "SPECVIEW_RANDOM"
)

const maxLineSize = 4 * 1024 * 1024

var (
	// ErrNoSuite is returned by Execute when no suite was loaded
	ErrNoSuite = errors.New("no suite loaded")
	// ErrAlreadyExecuted is returned by a second Execute
	ErrAlreadyExecuted = errors.New("runtime already executed")
)

// EnvSource provides the test environments to hand to the framework process
type EnvSource interface {
	TestEnvs() []framework.TestEnv
}

// Runner drives a headless test framework process and relays its lifecycle events
type Runner struct {
	command []string
	dir     string
	envs    EnvSource
	mode    framework.ErrorMode
	parser  parser.Parser
	logger  *zap.Logger

	mu        sync.Mutex
	reporters []framework.Reporter
	suite     string
	started   bool
	exited    chan error
}

// NewRunner creates a new Runner. command is the framework entry point; the suite path
// is appended as its last argument.
func NewRunner(command []string, dir string, envs EnvSource, mode framework.ErrorMode, p parser.Parser, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		command: command,
		dir:     dir,
		envs:    envs,
		mode:    mode,
		parser:  p,
		logger:  logger,
		exited:  make(chan error, 1),
	}
}

// AddReporter registers a sink for lifecycle events
func (r *Runner) AddReporter(rep framework.Reporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reporters = append(r.reporters, rep)
}

// Load resolves the suite entry point. Relative paths are taken from the runner directory.
func (r *Runner) Load(suite string) error {
	if suite == "" {
		return errors.New("suite path is empty")
	}
	path := suite
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, path)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("load suite %s: %w", suite, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.suite = path
	return nil
}

// Execute starts the framework process. Events are relayed on a separate goroutine,
// one at a time and in output order.
func (r *Runner) Execute(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrAlreadyExecuted
	}
	if r.suite == "" {
		return ErrNoSuite
	}
	if len(r.command) == 0 {
		return errors.New("no framework command configured")
	}

	var envs []framework.TestEnv
	if r.envs != nil {
		envs = r.envs.TestEnvs()
	}
	envJSON, err := json.Marshal(envs)
	if err != nil {
		return fmt.Errorf("encode test envs: %w", err)
	}

	args := append(append([]string{}, r.command[1:]...), r.suite)
	cmd := exec.CommandContext(ctx, r.command[0], args...)

	// Set environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env,
		fmt.Sprintf("%s=%s", TestEnvsVar, envJSON),
		RandomOrderVar+"=false",
	)

	cmd.Dir = r.dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", r.command[0], err)
	}
	r.started = true

	reporters := append([]framework.Reporter(nil), r.reporters...)
	var stderrDone sync.WaitGroup
	stderrDone.Add(1)
	go func() {
		defer stderrDone.Done()
		r.forwardStderr(stderr)
	}()
	go func() {
		fault := r.relay(stdout, reporters, cmd)
		stderrDone.Wait()
		waitErr := cmd.Wait()
		if fault != nil {
			r.exited <- fault
		} else {
			r.exited <- waitErr
		}
		close(r.exited)
	}()

	return nil
}

// Exited receives the process outcome once the framework exits
func (r *Runner) Exited() <-chan error {
	return r.exited
}

// relay reads events until the stream ends or the run is aborted
func (r *Runner) relay(stdout io.Reader, reporters []framework.Reporter, cmd *exec.Cmd) error {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		event, err := r.parser.ParseLine(line)
		if err != nil {
			if !errors.Is(err, parser.ErrNotEvent) {
				r.logger.Warn("Skipping framework event", zap.Error(err))
			} else if line != "" {
				r.logger.Debug("Framework output", zap.String("line", line))
			}
			continue
		}

		switch event.Kind {
		case parser.KindSuiteStarted:
			for _, rep := range reporters {
				rep.JasmineStarted(event.Suite)
			}
		case parser.KindSpecDone:
			for _, rep := range reporters {
				rep.SpecDone(event.Spec)
			}
		case parser.KindSuiteDone:
			for _, rep := range reporters {
				rep.JasmineDone()
			}
		case parser.KindUncaughtError:
			if r.mode != nil && r.mode.ReportErrorsAsFatal() {
				r.logger.Error("Uncaught error in framework", zap.String("message", event.Message))
				abort(cmd, stdout)
				return fmt.Errorf("uncaught framework error: %s", event.Message)
			}
			r.logger.Warn("Uncaught error in framework", zap.String("message", event.Message))
		}
	}

	if err := scanner.Err(); err != nil {
		r.logger.Error("Cannot read framework output", zap.Error(err))
		abort(cmd, stdout)
		return fmt.Errorf("read framework output: %w", err)
	}
	return nil
}

// abort kills the framework process and drains stdout so it is never left blocked on a
// full pipe
func abort(cmd *exec.Cmd, stdout io.Reader) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	_, _ = io.Copy(io.Discard, stdout)
}

func (r *Runner) forwardStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		r.logger.Warn("Framework stderr", zap.String("line", scanner.Text()))
	}
}

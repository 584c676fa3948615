package commands

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"specview/internal/config"
	"specview/internal/execution"
	"specview/internal/framework"
	"specview/internal/logging"
	"specview/internal/metrics"
	"specview/internal/parser"
	"specview/internal/reporter"
	"specview/internal/session"
	"specview/internal/storage"
	"specview/internal/ui"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	formatter *ui.Formatter
	viewer    ui.Viewer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, formatter *ui.Formatter, viewer ui.Viewer) *RunCommand {
	return &RunCommand{
		config:    cfg,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(rc.config.Flags.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	envs, err := rc.config.TestEnvs()
	if err != nil {
		return err
	}
	known, err := rc.config.KnownBackends()
	if err != nil {
		return err
	}

	registry := framework.NewBackends(known, rc.config.Backend, rc.config.Platform)
	mode := framework.NewHostErrorMode()
	runner := execution.NewRunner(rc.config.RunnerCommand, rc.config.ProjectPath, registry, mode, parser.NewJSONLinesParser(), logger)
	ctrl := session.NewController(runner, registry, rc.config.GetSuitePath(), envs, logger)

	if !rc.config.Flags.NoProgress {
		ctrl.AddObserver(ui.NewProgressBar(os.Stderr))
	}
	if addr := rc.config.Flags.MetricsAddr; addr != "" {
		reg := prometheus.NewRegistry()
		ctrl.AddObserver(metrics.NewRecorder(reg))
		srv := &http.Server{Addr: addr, Handler: metrics.Handler(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("Metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	rep := reporter.New(ctrl, mode, logger)
	if err := ctrl.Start(cmd.Context(), rep); err != nil {
		rc.formatter.PrintSummary(ctrl.Snapshot(), ctrl.PlatformName())
		return err
	}

	runErr := rc.wait(ctrl, runner, logger)

	snap := ctrl.Snapshot()
	rc.formatter.PrintSummary(snap, ctrl.PlatformName())

	if path := rc.config.GetReportPath(); path != "" {
		if err := storage.NewJSONStorage(path).Save(snap, ctrl.PlatformName()); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
	}

	if rc.config.Flags.OpenFailures && len(snap.FailedTests) > 0 {
		if err := rc.viewer.View(snap); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	if len(snap.FailedTests) > 0 {
		return fmt.Errorf("%d of %d test(s) failed", len(snap.FailedTests), snap.TotalTests)
	}
	return nil
}

// wait blocks until the session completes and the framework process exits
func (rc *RunCommand) wait(ctrl *session.Controller, runner *execution.Runner, logger *zap.Logger) error {
	select {
	case <-ctrl.Done():
		// Frameworks exit non-zero when specs fail; the session already has the outcome.
		if err := <-runner.Exited(); err != nil {
			logger.Debug("Framework exited", zap.Error(err))
		}
		return nil
	case err := <-runner.Exited():
		// Events are relayed before the exit is reported, so completion is already visible.
		select {
		case <-ctrl.Done():
			return nil
		default:
		}
		if err == nil {
			return errors.New("framework exited before the suite completed")
		}
		return fmt.Errorf("framework exited before the suite completed: %w", err)
	}
}

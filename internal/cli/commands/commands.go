package commands

import (
	"specview/internal/cli"
	"specview/internal/config"
	"specview/internal/ui"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	Run  *RunCommand
	Envs *EnvsCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	formatter := ui.NewFormatter(nil)
	viewer := ui.NewFailureViewer()

	return &Commands{
		Run:  NewRunCommand(cfg, formatter, viewer),
		Envs: NewEnvsCommand(cfg, formatter),
	}
}

// loadConfig replaces cfg with defaults, .env, environment and flags applied
func loadConfig(cfg *config.Config, flags *cli.Flags) error {
	loaded, err := config.Load(flags.ToConfigFlags())
	if err != nil {
		return err
	}
	*cfg = *loaded
	return nil
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	preRun := func(cmd *cobra.Command, args []string) error {
		return loadConfig(cfg, flags)
	}

	rootCmd.PersistentFlags().StringVarP(&flags.ProjectPath, "project", "C", "", "Directory the framework runs in; .env is read from here")
	rootCmd.PersistentFlags().StringVarP(&flags.Backend, "backend", "b", "", "Backend the computation library is configured for")
	rootCmd.PersistentFlags().StringVarP(&flags.EnvConfig, "env-config", "e", "", "YAML file listing backends and test environments")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log framework output and every test failure")

	// Run command
	runCmd := &cobra.Command{
		Use:     "run [suite]",
		Short:   "Run a spec suite and report its progress",
		Long:    "Load a spec suite into the framework runtime, execute it and project live progress onto the console report",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.Run.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.Suite = args[0]
			}
			return preRun(cmd, args)
		},
	}
	runCmd.Flags().StringVarP(&flags.Runner, "runner", "r", "", "Framework command; the suite path is appended (default \"node\")")
	runCmd.Flags().StringVarP(&flags.ReportPath, "report", "o", "", "Write the final session as JSON to this file")
	runCmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the suite runs")
	runCmd.Flags().BoolVar(&flags.OpenFailures, "open-failures", false, "Open the failure viewer when the run finishes with failures")
	runCmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Disable the progress bar")
	rootCmd.AddCommand(runCmd)

	// Envs command
	envsCmd := &cobra.Command{
		Use:     "envs",
		Short:   "List test environments",
		Long:    "Resolve and validate the test environments a run would register, without executing anything",
		RunE:    c.Envs.Execute,
		PreRunE: preRun,
	}
	rootCmd.AddCommand(envsCmd)
}

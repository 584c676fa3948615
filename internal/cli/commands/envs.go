package commands

import (
	"fmt"
	"sort"

	"specview/internal/config"
	"specview/internal/framework"
	"specview/internal/ui"

	"github.com/spf13/cobra"
)

// EnvsCommand handles the envs command
type EnvsCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewEnvsCommand creates a new EnvsCommand
func NewEnvsCommand(cfg *config.Config, formatter *ui.Formatter) *EnvsCommand {
	return &EnvsCommand{
		config:    cfg,
		formatter: formatter,
	}
}

// Execute runs the command
func (ec *EnvsCommand) Execute(cmd *cobra.Command, args []string) error {
	envs, err := ec.config.TestEnvs()
	if err != nil {
		return err
	}
	known, err := ec.config.KnownBackends()
	if err != nil {
		return err
	}

	registry := framework.NewBackends(known, ec.config.Backend, ec.config.Platform)
	active, err := registry.ActiveBackend()
	if err != nil {
		return err
	}
	if err := registry.SetTestEnvs(envs); err != nil {
		return err
	}

	ec.formatter.PrintEnvs(active, registry.Known(), envViews(registry.TestEnvs()))
	return nil
}

func envViews(envs []framework.TestEnv) []ui.EnvView {
	views := make([]ui.EnvView, 0, len(envs))
	for _, env := range envs {
		names := make([]string, 0, len(env.Flags))
		for name := range env.Flags {
			names = append(names, name)
		}
		sort.Strings(names)

		flags := make([]string, 0, len(names))
		for _, name := range names {
			flags = append(flags, fmt.Sprintf("%s=%v", name, env.Flags[name]))
		}
		views = append(views, ui.EnvView{Name: env.Name, Backend: env.BackendName, Flags: flags})
	}
	return views
}

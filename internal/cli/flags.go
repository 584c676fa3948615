package cli

import "specview/internal/config"

// Flags holds command-line flags
type Flags struct {
	ProjectPath  string
	Suite        string
	Runner       string
	Backend      string
	EnvConfig    string
	ReportPath   string
	MetricsAddr  string
	OpenFailures bool
	NoProgress   bool
	Verbose      bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ProjectPath:  f.ProjectPath,
		Suite:        f.Suite,
		Runner:       f.Runner,
		Backend:      f.Backend,
		EnvConfig:    f.EnvConfig,
		ReportPath:   f.ReportPath,
		MetricsAddr:  f.MetricsAddr,
		OpenFailures: f.OpenFailures,
		NoProgress:   f.NoProgress,
		Verbose:      f.Verbose,
	}
}

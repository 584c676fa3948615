package framework

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

var (
	// ErrUnknownBackend is returned for backend names the registry does not know
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrNoActiveBackend is returned when no backend has been selected
	ErrNoActiveBackend = errors.New("no active backend")
)

// Backends is an EnvRegistry over a fixed set of known backends
type Backends struct {
	mu       sync.RWMutex
	known    map[string]bool
	active   string
	platform string
	envs     []TestEnv
}

// NewBackends creates a registry knowing the given backends with active selected
func NewBackends(known []string, active, platform string) *Backends {
	knownMap := make(map[string]bool)
	for _, name := range known {
		knownMap[name] = true
	}
	return &Backends{
		known:    knownMap,
		active:   active,
		platform: platform,
	}
}

// ActiveBackend returns the selected backend
func (b *Backends) ActiveBackend() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.active == "" {
		return "", ErrNoActiveBackend
	}
	if !b.known[b.active] {
		return "", fmt.Errorf("%w: %s", ErrUnknownBackend, b.active)
	}
	return b.active, nil
}

// PlatformName returns the configured platform description
func (b *Backends) PlatformName() string {
	return b.platform
}

// Known returns the sorted names of known backends
func (b *Backends) Known() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.known))
	for name := range b.known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetTestEnvs validates and registers envs, replacing any earlier registration.
// Nothing is registered if any env is invalid.
func (b *Backends) SetTestEnvs(envs []TestEnv) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]bool)
	for _, env := range envs {
		if env.Name == "" {
			return errors.New("test env has no name")
		}
		if seen[env.Name] {
			return fmt.Errorf("duplicate test env %q", env.Name)
		}
		seen[env.Name] = true
		if !b.known[env.BackendName] {
			return fmt.Errorf("test env %q: %w: %q", env.Name, ErrUnknownBackend, env.BackendName)
		}
		for flag, value := range env.Flags {
			if !validFlagValue(value) {
				return fmt.Errorf("test env %q: flag %s has unsupported value %v (%T)", env.Name, flag, value, value)
			}
		}
	}

	b.envs = make([]TestEnv, len(envs))
	for i, env := range envs {
		b.envs[i] = cloneEnv(env)
	}
	return nil
}

// TestEnvs returns a copy of the registered envs
func (b *Backends) TestEnvs() []TestEnv {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]TestEnv, len(b.envs))
	for i, env := range b.envs {
		out[i] = cloneEnv(env)
	}
	return out
}

func cloneEnv(env TestEnv) TestEnv {
	flags := make(map[string]any, len(env.Flags))
	for k, v := range env.Flags {
		flags[k] = v
	}
	env.Flags = flags
	return env
}

func validFlagValue(v any) bool {
	switch v.(type) {
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// HostErrorMode is an ErrorMode backed by an atomic flag
type HostErrorMode struct {
	fatal atomic.Bool
}

// NewHostErrorMode returns a mode that starts out reporting errors as fatal
func NewHostErrorMode() *HostErrorMode {
	m := &HostErrorMode{}
	m.fatal.Store(true)
	return m
}

func (m *HostErrorMode) ReportErrorsAsFatal() bool {
	return m.fatal.Load()
}

func (m *HostErrorMode) SetReportErrorsAsFatal(fatal bool) {
	m.fatal.Store(fatal)
}

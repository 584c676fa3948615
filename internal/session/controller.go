package session

import (
	"context"
	"fmt"
	"sync"

	"specview/internal/domain"
	"specview/internal/framework"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Observer is notified with a snapshot after every applied event. The snapshot shares
// failure records with the session and must be treated as read-only.
type Observer interface {
	Observe(snap domain.Snapshot)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(snap domain.Snapshot)

func (f ObserverFunc) Observe(snap domain.Snapshot) { f(snap) }

// Controller owns a single test session. It is the only writer of the session state.
type Controller struct {
	id       string
	runtime  framework.Runtime
	registry framework.EnvRegistry
	suite    string
	envs     []framework.TestEnv
	logger   *zap.Logger

	startOnce sync.Once
	startErr  error

	mu        sync.RWMutex
	state     domain.Session
	setupErr  error
	observers []Observer
	done      chan struct{}
}

// NewController creates a controller for one run of suite against envs
func NewController(rt framework.Runtime, registry framework.EnvRegistry, suite string, envs []framework.TestEnv, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Controller{
		id:       id,
		runtime:  rt,
		registry: registry,
		suite:    suite,
		envs:     envs,
		logger:   logger.With(zap.String("session", id)),
		done:     make(chan struct{}),
	}
}

// ID returns the session identifier
func (c *Controller) ID() string {
	return c.id
}

// AddObserver registers o for snapshot notifications
func (c *Controller) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Start runs session setup: resolve the backend, register test environments, load the
// suite, attach rep and execute. Only the first call does any work; later calls return
// its result.
func (c *Controller) Start(ctx context.Context, rep framework.Reporter) error {
	c.startOnce.Do(func() {
		if err := c.setup(ctx, rep); err != nil {
			c.mu.Lock()
			c.setupErr = err
			c.mu.Unlock()
			c.logger.Error("Session setup failed", zap.Error(err))
			c.startErr = err
		}
	})
	return c.startErr
}

func (c *Controller) setup(ctx context.Context, rep framework.Reporter) error {
	backend, err := c.registry.ActiveBackend()
	if err != nil {
		return &SetupError{Stage: StageResolveBackend, Err: err}
	}
	c.mu.Lock()
	c.state.BackendLabel = backend
	c.mu.Unlock()

	if err := c.registry.SetTestEnvs(c.envs); err != nil {
		return &SetupError{Stage: StageRegisterEnvs, Err: err}
	}
	if err := c.runtime.Load(c.suite); err != nil {
		return &SetupError{Stage: StageLoadSuite, Err: err}
	}

	c.runtime.AddReporter(rep)
	if err := c.runtime.Execute(ctx); err != nil {
		return &SetupError{Stage: StageExecute, Err: err}
	}

	c.logger.Info("Session started",
		zap.String("backend", backend),
		zap.String("suite", c.suite),
		zap.Int("envs", len(c.envs)))
	return nil
}

// Apply folds e into the session. Rejected events are logged and leave the session as it
// was; the returned error is informational only.
func (c *Controller) Apply(e Event) error {
	c.mu.Lock()
	if c.setupErr != nil {
		c.mu.Unlock()
		err := fmt.Errorf("%w: %s after failed setup", ErrProtocolViolation, eventName(e))
		c.logger.Warn("Ignoring event", zap.Error(err))
		return err
	}

	next, err := Reduce(c.state, e)
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("Ignoring event", zap.Error(err))
		return err
	}
	c.state = next
	snap := domain.NewSnapshot(c.id, c.state, nil)
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	if next.Phase == domain.PhaseRunning && next.Completed() > next.TotalTests {
		c.logger.Warn("More specs completed than declared",
			zap.Int("declared", next.TotalTests),
			zap.Int("completed", next.Completed()))
	}
	if _, ok := e.(SuiteDone); ok {
		close(c.done)
		c.logger.Info("Session complete",
			zap.Int("total", next.TotalTests),
			zap.Int("passed", next.PassedCount),
			zap.Int("failed", len(next.Failures)))
	}

	for _, o := range observers {
		c.notify(o, snap)
	}
	return nil
}

func (c *Controller) notify(o Observer, snap domain.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Observer panicked", zap.Any("panic", r))
		}
	}()
	o.Observe(snap)
}

// Snapshot returns a deep copy of the current session. Once the session is complete
// every snapshot is identical.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.NewSnapshot(c.id, c.state, c.setupErr).Clone()
}

// PlatformName describes the runtime the computation library executes under
func (c *Controller) PlatformName() string {
	return c.registry.PlatformName()
}

// Done is closed when the session completes
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the session completes or ctx ends
func (c *Controller) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

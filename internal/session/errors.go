package session

import "fmt"

// Stage names a step of session setup
type Stage string

const (
	StageResolveBackend Stage = "resolve-backend"
	StageRegisterEnvs   Stage = "register-envs"
	StageLoadSuite      Stage = "load-suite"
	StageExecute        Stage = "execute"
)

// SetupError is returned when a session could not start running
type SetupError struct {
	Stage Stage
	Err   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("session setup failed at %s: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

package config

import (
	"fmt"
	"runtime"
)

const (
	// DefaultProjectPath is the directory the framework process runs in
	DefaultProjectPath = "."
	// DefaultSuite is the suite entry point, relative to the project path
	DefaultSuite = "specs/index.js"
	// DefaultBackend is the backend the computation library is configured for
	DefaultBackend = "cpu"
	// DefaultEnvName is the name of the test environment registered for the run
	DefaultEnvName = "test-rn"
	// DefaultEnvFile is the dotenv file read from the project path
	DefaultEnvFile = ".env"
)

// DefaultRunnerCommand launches the headless framework; the suite path is appended
var DefaultRunnerCommand = []string{"node"}

// DefaultBackends are the backends the environment registry accepts
var DefaultBackends = []string{
	"cpu",
	"webgl",
	"wasm",
	"rn-webgl",
}

// DefaultFlags are the feature flag overrides of the default test environment
var DefaultFlags = map[string]any{
	"WEBGL_CPU_FORWARD":         false,
	"WEBGL_SIZE_UPLOAD_UNIFORM": 0,
}

// DefaultPlatform describes the host the library runs under
func DefaultPlatform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}

package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Verbose selects a debug-level development logger;
// otherwise only warnings and above are written so the console report stays readable.
func New(verbose bool) (*zap.Logger, error) {
	var zapConfig zap.Config
	if verbose {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level.SetLevel(zap.DebugLevel)
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level.SetLevel(zap.WarnLevel)
		zapConfig.DisableStacktrace = true
	}
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapConfig.OutputPaths = []string{"stderr"}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	return logger, nil
}

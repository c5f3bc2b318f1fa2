package utils

import "go.uber.org/zap"

// NewLogger builds the application logger, named so components sharing one
// log stream stay attributable. Debug mode uses the development config
// (console encoder, debug level); otherwise JSON at info level.
func NewLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named("radassist"), nil
}

// Package logging constructs the service's structured logger: built once in
// main and threaded into every constructor, emitting structured fields via
// zap instead of printf-style lines.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap.SugaredLogger unless dev is true, in which
// case it builds a console-encoded, more verbose development logger.
func New(dev bool) *zap.SugaredLogger {
	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than crash the process over a
		// logging misconfiguration.
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// RequestField is the structured field name used for the request id that
// chi's RequestID middleware attaches in internal/api's router.
const RequestField = "request_id"

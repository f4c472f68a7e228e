package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the production logger: ISO8601 timestamps, no
// stacktraces, level from the debug flag.
func New(debug bool) (*zap.SugaredLogger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logConfig := zap.NewProductionConfig()
	logConfig.EncoderConfig = encoderConfig
	logConfig.DisableStacktrace = true

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	logConfig.Level.SetLevel(level)

	coreLogger, err := logConfig.Build()
	if err != nil {
		return nil, err
	}

	return coreLogger.Sugar(), nil
}

package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every log line.
const ServiceName = "pronto-sync"

var globalLogger *zap.Logger

// Options selects the encoder and the fields stamped on every entry.
type Options struct {
	// Environment is the runtime environment; "production" switches to JSON output.
	Environment string
	// Level is a zap level name. Unknown names keep the encoder's default.
	Level string
	// ProntoEnvironment is the default Pronto instance ("test" or "prod").
	ProntoEnvironment string
}

// Init builds the global logger.
// Production entries are unsampled JSON with ISO8601 timestamps and no stack traces.
// Other environments get coloured console output.
func Init(opts Options) error {
	var config zap.Config

	if opts.Environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.DisableStacktrace = true
		config.Sampling = nil
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if l, err := zapcore.ParseLevel(opts.Level); err == nil {
		config.Level = zap.NewAtomicLevelAt(l)
	}

	fields := []zap.Field{zap.String("service", ServiceName)}
	if opts.ProntoEnvironment != "" {
		fields = append(fields, zap.String("pronto_env", opts.ProntoEnvironment))
	}

	logger, err := config.Build(zap.Fields(fields...))
	if err != nil {
		return err
	}

	globalLogger = logger
	return nil
}

// Get returns the global logger instance.
// If not initialized, it returns a no-op logger to prevent panics.
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// Use installs l as the global logger and returns a func restoring the previous one.
func Use(l *zap.Logger) (restore func()) {
	prev := globalLogger
	globalLogger = l
	return func() { globalLogger = prev }
}

// Sync flushes any buffered log entries.
func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}

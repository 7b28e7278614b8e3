// Package poller provides a generic, timer-driven background worker that
// periodically drains a bounded queue (typically the outbox Relay) through a
// caller-supplied tick callback.
package poller

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Default configuration keys, overridable per Worker instance through EnvKeys.
const (
	DefaultEnabledKey   = "WORKER_ENABLED"
	DefaultIntervalKey  = "WORKER_POLL_INTERVAL_MS"
	DefaultBatchSizeKey = "WORKER_BATCH_SIZE"
)

// Configuration bounds and fallback values. Out-of-range settings fall back
// to the defaults instead of failing startup: polling must keep working with
// a safe cadence even when misconfigured.
const (
	DefaultInterval = 1000 * time.Millisecond
	MinInterval     = 200 * time.Millisecond

	DefaultBatchSize = 50
	MaxBatchSize     = 500
)

// Config is the effective Worker configuration.
type Config struct {
	Enabled   bool
	Interval  time.Duration
	BatchSize int
}

// EnvKeys names the environment-style keys a Worker instance reads its
// configuration from. Zero-valued fields fall back to the default keys.
type EnvKeys struct {
	Enabled   string
	Interval  string
	BatchSize string
}

func (keys EnvKeys) withDefaults() EnvKeys {
	if keys.Enabled == "" {
		keys.Enabled = DefaultEnabledKey
	}

	if keys.Interval == "" {
		keys.Interval = DefaultIntervalKey
	}

	if keys.BatchSize == "" {
		keys.BatchSize = DefaultBatchSizeKey
	}

	return keys
}

// ConfigFromEnv reads the Worker configuration from environment-style
// key/value pairs through the provided lookup function (os.Getenv when nil).
//
// Invalid or out-of-range values never fail startup: the enabled flag
// defaults to false, while an interval below MinInterval or a batch size
// outside (0, MaxBatchSize] falls back to the documented default, logged
// at warn level.
func ConfigFromEnv(lookup func(key string) string, keys EnvKeys, logger *zap.Logger) Config {
	if lookup == nil {
		lookup = os.Getenv
	}

	keys = keys.withDefaults()

	return Config{
		Enabled:   parseEnabled(lookup(keys.Enabled), keys.Enabled, logger),
		Interval:  parseInterval(lookup(keys.Interval), keys.Interval, logger),
		BatchSize: parseBatchSize(lookup(keys.BatchSize), keys.BatchSize, logger),
	}
}

func parseEnabled(value, key string, logger *zap.Logger) bool {
	switch value {
	case "true", "1":
		return true
	case "false", "0", "":
		return false
	}

	logger.Warn("invalid enabled flag, worker stays disabled",
		zap.String("key", key),
		zap.String("value", value),
	)

	return false
}

func parseInterval(value, key string, logger *zap.Logger) time.Duration {
	if value == "" {
		return DefaultInterval
	}

	millis, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn("invalid poll interval, falling back to default",
			zap.String("key", key),
			zap.String("value", value),
			zap.Duration("default", DefaultInterval),
		)

		return DefaultInterval
	}

	interval := time.Duration(millis) * time.Millisecond
	if interval < MinInterval {
		logger.Warn("poll interval below minimum, falling back to default",
			zap.String("key", key),
			zap.Duration("interval", interval),
			zap.Duration("minimum", MinInterval),
			zap.Duration("default", DefaultInterval),
		)

		return DefaultInterval
	}

	return interval
}

func parseBatchSize(value, key string, logger *zap.Logger) int {
	if value == "" {
		return DefaultBatchSize
	}

	size, err := strconv.Atoi(value)
	if err != nil || size <= 0 || size > MaxBatchSize {
		logger.Warn("invalid batch size, falling back to default",
			zap.String("key", key),
			zap.String("value", value),
			zap.Int("default", DefaultBatchSize),
		)

		return DefaultBatchSize
	}

	return size
}

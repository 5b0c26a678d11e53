package module

import (
	"time"

	"vigil/internal/platform/config"
	"vigil/internal/platform/ops"
)

// Options controls scheduler behavior. Values may also be read from env
type Options struct {
	Tick        time.Duration
	BatchSize   int
	MaxAttempts int
	Metrics     *ops.Metrics
}

// FromConfig reads options using the SCHEDULER_ prefix. The per-job attempt
// budget follows WORKER_MAX_ATTEMPTS so enqueue and retry agree on the cap
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("SCHEDULER_")
	return Options{
		Tick:        time.Duration(sc.MayInt("TICK_SECONDS", 15)) * time.Second,
		BatchSize:   sc.MayInt("BATCH_SIZE", 200),
		MaxAttempts: cfg.Prefix("WORKER_").MayInt("MAX_ATTEMPTS", 3),
	}
}

package module

import (
	"time"

	"vigil/internal/core/checker"
	"vigil/internal/platform/config"
	"vigil/internal/platform/ops"
)

// Options controls worker behavior. Values may also be read from env
type Options struct {
	BatchSize      int
	Lease          time.Duration
	Poll           time.Duration
	Concurrency    int
	PerService     int
	DefaultTimeout time.Duration

	// Client overrides the probe transport, nil builds one from CHECKER_ env
	Client checker.Client

	Metrics *ops.Metrics
}

// FromConfig reads options using the WORKER_ prefix, plus the probe envelope
// default under CHECKER_
func FromConfig(cfg config.Conf) Options {
	wc := cfg.Prefix("WORKER_")
	return Options{
		BatchSize:      wc.MayInt("BATCH_SIZE", 25),
		Lease:          time.Duration(wc.MayInt("LEASE_SECONDS", 60)) * time.Second,
		Poll:           time.Duration(wc.MayInt("POLL_SECONDS", 2)) * time.Second,
		Concurrency:    wc.MayInt("CONCURRENCY", 16),
		PerService:     wc.MayInt("PER_SERVICE_CONCURRENCY", 2),
		DefaultTimeout: time.Duration(cfg.Prefix("CHECKER_").MayInt("HTTP_TIMEOUT_SECONDS", 5)) * time.Second,
	}
}

package cache

// config.go defines the internal configuration object and the set of
// functional options New accepts. Unlike the teacher's config[K, V],
// this config is not generic: there is no key type to parameterise
// over here, only logging and metrics knobs that apply uniformly
// across every T a Cache ever holds.
//
// Design notes
// ------------
// • All fields are initialised with sensible defaults in defaultConfig().
// • Options never allocate unless strictly necessary – they just capture
//   pointers to external objects (registry, logger).
// • The struct itself is unexported: users can only influence behaviour via
//   Option, which keeps the door open to add fields without breaking callers.
//
// © 2025 linecache authors. MIT License.

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option is a functional option passed to New.
type Option func(*config)

// config bundles every knob that influences cache behaviour. Immutable
// once the Cache is constructed.
type config struct {
    groups int
    lines  int

    registry *prometheus.Registry
    logger   *zap.Logger
}

func defaultConfig(groups, lines int) *config {
    return &config{
        groups:   groups,
        lines:    lines,
        logger:   zap.NewNop(),
        registry: nil, // user must opt‑in to metrics
    }
}

/*
   ---------------- Functional options exposed to users ----------------
*/

// WithMetrics enables Prometheus metrics collection for the cache instance.
// Passing nil disables metrics (default).
func WithMetrics(reg *prometheus.Registry) Option {
    return func(c *config) {
        c.registry = reg
    }
}

// WithLogger plugs an external zap.Logger.  The cache never logs on the hot
// path; only slow events (writeback failures, poisoning) are emitted.
func WithLogger(l *zap.Logger) Option {
    return func(c *config) {
        if l != nil {
            c.logger = l
        }
    }
}

/*
   ---------------- Helper: apply options & validate ----------------
*/

// applyOptions copies user‑supplied options into cfg and validates the
// invariants New requires.
func applyOptions(cfg *config, opts []Option) error {
    for _, opt := range opts {
        opt(cfg)
    }
    if cfg.groups <= 0 {
        return errInvalidGroups
    }
    if cfg.lines <= 0 {
        return errInvalidLines
    }
    return nil
}

/*
   ---------------- Error values ----------------
*/

var (
    errInvalidGroups = errors.New("linecache: number of groups must be > 0")
    errInvalidLines  = errors.New("linecache: number of lines per group must be > 0")
)

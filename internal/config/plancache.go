package config

import "time"

// PlanCacheConfig tunes the redis response cache in front of the
// transport group lookup.  The plan behind that endpoint only
// changes on restart, so cached responses cannot go stale within a
// process lifetime.  Live-occupancy endpoints are never cached.
type PlanCacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

func LoadPlanCacheConfig() PlanCacheConfig {
	def := PlanCacheConfig{
		Enabled:      envBool("PLAN_CACHE_ENABLED", true),
		TTL:          envDur("PLAN_CACHE_TTL", 5*time.Minute),
		Prefix:       envStr("PLAN_CACHE_PREFIX", "plan"),
		MaxBodyBytes: envInt("PLAN_CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if def.TTL <= 0 {
		def.TTL = 5 * time.Minute
	}
	return def
}

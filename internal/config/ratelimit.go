package config

import "time"

// AuthBucket is the key suffix used by the tighter limiter in front of the
// anonymous user routes.
const AuthBucket = "auth"

// RateLimitConfig drives the Redis token bucket.  Capacity applies to every
// /api/v1 route; AuthCapacity is a tighter bucket for register, login and
// changePasswordWithoutLogin, the routes that accept a password from an
// unauthenticated caller.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	AuthCapacity   int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string // ip | user | route | ip_route | user_route | ip_user_route
	Prefix         string
	Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		AuthCapacity:   envInt("RATE_LIMIT_AUTH_CAPACITY", 10),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}.normalize()
}

// normalize keeps the bucket usable whatever the environment says.  An idle
// bucket must outlive at least five refill intervals or Redis would forget
// a drained bucket before it refilled.
func (c RateLimitConfig) normalize() RateLimitConfig {
	c.Capacity = atLeast(c.Capacity, 1)
	c.AuthCapacity = atLeast(c.AuthCapacity, 1)
	c.RefillTokens = atLeast(c.RefillTokens, 1)
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	c.TTL = atLeast(c.TTL, 5*c.RefillInterval)
	return c
}

// WithCapacity returns a copy using a different bucket size and a key
// prefix of its own, so two limiters never share Redis state.
func (c RateLimitConfig) WithCapacity(capacity int, bucket string) RateLimitConfig {
	c.Capacity = atLeast(capacity, 1)
	c.Prefix = c.Prefix + ":" + bucket
	return c
}

// ForAuth is the limiter for the anonymous user routes.
func (c RateLimitConfig) ForAuth() RateLimitConfig {
	return c.WithCapacity(c.AuthCapacity, AuthBucket)
}

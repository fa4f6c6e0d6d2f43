package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// The env helpers fall back to d when the variable is unset, blank or
// unparsable.  Load is the only place that treats a missing value as an
// error.

func envStr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(envStr(k, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	n, err := strconv.Atoi(envStr(k, ""))
	if err != nil {
		return d
	}
	return n
}

func envDur(k string, d time.Duration) time.Duration {
	dur, err := time.ParseDuration(envStr(k, ""))
	if err != nil {
		return d
	}
	return dur
}

// atLeast clamps v to min.
func atLeast[T int | time.Duration](v, min T) T {
	if v < min {
		return min
	}
	return v
}

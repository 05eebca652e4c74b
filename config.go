package bootstrap

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Config is the configuration envelope handed to every initializer. The
// connection-specific fields (host, port, credentials, ...) vary by
// subsystem; the retry/timeout policy keys are shared:
//
//	timeout        seconds, must be > 0 when present
//	retry_attempts integer, >= 0
//	retry_delay    seconds, >= 0
//
// Values typically arrive from a feeder (YAML, TOML, JSON, environment) and
// may therefore carry loosely-typed scalars; the typed accessors convert on
// read.
type Config map[string]any

// Has reports whether a key is present.
func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// String returns the value under key converted to a string, or "" when the
// key is absent or not convertible.
func (c Config) String(key string) string {
	v, ok := c[key]
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// Int returns the value under key converted to an int, with ok reporting
// whether the key was present and convertible.
func (c Config) Int(key string) (int, bool) {
	v, present := c[key]
	if !present {
		return 0, false
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float returns the value under key converted to a float64, with ok
// reporting whether the key was present and convertible.
func (c Config) Float(key string) (float64, bool) {
	v, present := c[key]
	if !present {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool returns the value under key converted to a bool.
func (c Config) Bool(key string) bool {
	v, present := c[key]
	if !present {
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false
	}
	return b
}

// Timeout returns the advisory connection timeout, zero when unset.
func (c Config) Timeout() time.Duration {
	secs, ok := c.Float("timeout")
	if !ok || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// RetryAttempts returns how many times a failed connection probe is
// retried, zero when unset.
func (c Config) RetryAttempts() int {
	n, ok := c.Int("retry_attempts")
	if !ok || n < 0 {
		return 0
	}
	return n
}

// RetryDelay returns the pause between connection probe attempts, zero
// when unset.
func (c Config) RetryDelay() time.Duration {
	secs, ok := c.Float("retry_delay")
	if !ok || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// validateEnvelope checks the shared policy keys. Subsystem fields are the
// driver's responsibility.
func (c Config) validateEnvelope() []string {
	var problems []string
	if c.Has("timeout") {
		if secs, ok := c.Float("timeout"); !ok || secs <= 0 {
			problems = append(problems, "Invalid timeout value")
		}
	}
	if c.Has("retry_attempts") {
		if n, ok := c.Int("retry_attempts"); !ok || n < 0 {
			problems = append(problems, "Invalid retry_attempts value")
		}
	}
	if c.Has("retry_delay") {
		if secs, ok := c.Float("retry_delay"); !ok || secs < 0 {
			problems = append(problems, "Invalid retry_delay value")
		}
	}
	return problems
}

// RequireString returns the non-empty string under key or an error naming
// the field, for driver validation hooks. The label is the field name as it
// should appear in the message, e.g. RequireString("host", "Host") yields
// "Host cannot be empty".
func (c Config) RequireString(key, label string) (string, error) {
	s := c.String(key)
	if s == "" {
		return "", fmt.Errorf("%s cannot be empty", label)
	}
	return s, nil
}

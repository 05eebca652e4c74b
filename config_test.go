package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigTypedAccessors(t *testing.T) {
	cfg := Config{
		"host":    "localhost",
		"port":    "5432",
		"ratio":   "0.5",
		"enabled": "true",
	}

	assert.Equal(t, "localhost", cfg.String("host"))
	assert.Equal(t, "", cfg.String("missing"))

	port, ok := cfg.Int("port")
	require.True(t, ok)
	assert.Equal(t, 5432, port)
	_, ok = cfg.Int("host")
	assert.False(t, ok)

	ratio, ok := cfg.Float("ratio")
	require.True(t, ok)
	assert.Equal(t, 0.5, ratio)

	assert.True(t, cfg.Bool("enabled"))
	assert.False(t, cfg.Bool("missing"))

	assert.True(t, cfg.Has("host"))
	assert.False(t, cfg.Has("missing"))
}

func TestConfigPolicyDefaults(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, time.Duration(0), cfg.Timeout())
	assert.Equal(t, 0, cfg.RetryAttempts())
	assert.Equal(t, time.Duration(0), cfg.RetryDelay())
}

func TestConfigPolicyValues(t *testing.T) {
	cfg := Config{
		"timeout":        2.5,
		"retry_attempts": 3,
		"retry_delay":    0.25,
	}
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout())
	assert.Equal(t, 3, cfg.RetryAttempts())
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay())
}

func TestValidateEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		problems []string
	}{
		{name: "empty", cfg: Config{}},
		{name: "valid policy", cfg: Config{"timeout": 5, "retry_attempts": 2, "retry_delay": 1}},
		{name: "zero timeout", cfg: Config{"timeout": 0}, problems: []string{"Invalid timeout value"}},
		{name: "negative timeout", cfg: Config{"timeout": -1}, problems: []string{"Invalid timeout value"}},
		{name: "non-numeric timeout", cfg: Config{"timeout": "soon"}, problems: []string{"Invalid timeout value"}},
		{name: "negative attempts", cfg: Config{"retry_attempts": -1}, problems: []string{"Invalid retry_attempts value"}},
		{name: "negative delay", cfg: Config{"retry_delay": -0.1}, problems: []string{"Invalid retry_delay value"}},
		{name: "zero delay ok", cfg: Config{"retry_delay": 0}},
		{
			name:     "multiple problems",
			cfg:      Config{"timeout": -1, "retry_attempts": -1},
			problems: []string{"Invalid timeout value", "Invalid retry_attempts value"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.problems, tt.cfg.validateEnvelope())
		})
	}
}

func TestRequireString(t *testing.T) {
	cfg := Config{"host": "localhost", "port": 5432}

	host, err := cfg.RequireString("host", "Host")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)

	// Numeric values stringify rather than fail.
	port, err := cfg.RequireString("port", "Port")
	require.NoError(t, err)
	assert.Equal(t, "5432", port)

	_, err = cfg.RequireString("user", "User")
	require.Error(t, err)
	assert.Equal(t, "User cannot be empty", err.Error())
}

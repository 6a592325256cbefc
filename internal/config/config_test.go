package config

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadstead/threadstead/internal/errors"
	"github.com/threadstead/threadstead/internal/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8930, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, DefaultMaxNodes, cfg.Compiler.MaxNodes)
	assert.Equal(t, DefaultMaxIslands, cfg.Compiler.MaxIslands)
	assert.Equal(t, string(types.ModeDefault), cfg.Compiler.DefaultMode)
	assert.True(t, cfg.Development.HotReload)
	assert.Equal(t, "info", cfg.Log.Level)

	require.NoError(t, cfg.Validate())
}

func TestDefaultAllowLists(t *testing.T) {
	assert.Contains(t, DefaultDisallowedTags(), "script")
	assert.Contains(t, DefaultDisallowedTags(), "iframe")
	assert.NotContains(t, DefaultContainerTags(), "script")
	assert.Contains(t, DefaultContainerTags(), "div")
	assert.Contains(t, DefaultUniversalAttributes(), "class")
	assert.Contains(t, DefaultUniversalAttributes(), "data-")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "port 0 out of range",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "out of range",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Compiler.DefaultMode = "sparkly" },
			wantErr: `unknown default mode "sparkly"`,
		},
		{
			name:    "non-positive max nodes",
			mutate:  func(c *Config) { c.Compiler.MaxNodes = 0 },
			wantErr: "max_nodes must be positive",
		},
		{
			name:    "non-positive max islands",
			mutate:  func(c *Config) { c.Compiler.MaxIslands = -3 },
			wantErr: "max_islands must be positive",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: `unknown log format "xml"`,
		},
		{
			name:   "log format is case-insensitive",
			mutate: func(c *Config) { c.Log.Format = "JSON" },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_ErrorsAreStructured(t *testing.T) {
	cfg := Default()
	cfg.Compiler.DefaultMode = "sparkly"

	var se *errors.SteadError
	require.True(t, stderrors.As(cfg.Validate(), &se))
	assert.Equal(t, errors.ErrorTypeConfig, se.Type)
	assert.Equal(t, errors.CodeUnknownMode, se.Code)

	cfg = Default()
	cfg.Server.Port = 0
	require.True(t, stderrors.As(cfg.Validate(), &se))
	assert.Equal(t, errors.CodeInvalidConfig, se.Code)
}

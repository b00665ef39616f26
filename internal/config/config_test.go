package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHCLFillsDefaultsForOmittedBlocks(t *testing.T) {
	cfg, err := LoadHCL([]byte(`
log_level = "debug"
`), "test.hcl")
	require.NoError(t, err)

	cfg.fillDefaults()
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NotNil(t, cfg.Services)
	require.NotNil(t, cfg.Services.ARC)
	assert.Equal(t, 44440, cfg.Services.ARC.LocalPort)
}

func TestLoadHCLExplicitServiceOverridesDefault(t *testing.T) {
	cfg, err := LoadHCL([]byte(`
services {
  arc {
    local_port = 55555
    deadline_ms = 2000
  }
}
`), "test.hcl")
	require.NoError(t, err)

	cfg.fillDefaults()
	assert.Equal(t, 55555, cfg.Services.ARC.LocalPort)
	require.NotNil(t, cfg.Services.CMC)
	assert.Equal(t, 48800, cfg.Services.CMC.LocalPort)
}

func TestLoadJSONRoundTrip(t *testing.T) {
	cfg, err := LoadJSON([]byte(`{"schema_version":"1.0","log_level":"warn"}`))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestDefaultPopulatesDocumentedPorts(t *testing.T) {
	d := Default()
	assert.Equal(t, 44440, d.Services.ARC.LocalPort)
	assert.Equal(t, 48800, d.Services.CMC.LocalPort)
	assert.Equal(t, 48700, d.Services.Settings.LocalPort)
}

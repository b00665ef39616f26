// Package config loads the daemon's runtime configuration from HCL or JSON,
// grounded on the teacher's internal/config loader/schema-version pattern.
package config

// CurrentSchemaVersion is the schema version this build writes and prefers.
const CurrentSchemaVersion = "1.0"

// Config is the top-level configuration structure.
type Config struct {
	SchemaVersion string `hcl:"schema_version,optional" json:"schema_version,omitempty"`

	LogLevel string `hcl:"log_level,optional" json:"log_level,omitempty"`

	Discovery *DiscoveryConfig `hcl:"discovery,block" json:"discovery,omitempty"`
	Services  *ServicesConfig  `hcl:"services,block" json:"services,omitempty"`
}

// DiscoveryConfig controls mDNS browsing.
type DiscoveryConfig struct {
	// Interfaces restricts mDNS queries/multicast joins to the named
	// network interfaces. Empty means "all multicast-capable interfaces".
	Interfaces []string `hcl:"interfaces,optional" json:"interfaces,omitempty"`
}

// ServicesConfig holds per-service transport tuning.
type ServicesConfig struct {
	ARC      *ServiceConfig `hcl:"arc,block" json:"arc,omitempty"`
	CMC      *ServiceConfig `hcl:"cmc,block" json:"cmc,omitempty"`
	Settings *ServiceConfig `hcl:"settings,block" json:"settings,omitempty"`
	Volume   *ServiceConfig `hcl:"volume,block" json:"volume,omitempty"`
}

// ServiceConfig is the per-service port/deadline pair.
type ServiceConfig struct {
	LocalPort    int `hcl:"local_port,optional" json:"local_port,omitempty"`
	DeadlineMS   int `hcl:"deadline_ms,optional" json:"deadline_ms,omitempty"`
}

// Default returns a Config populated with the documented protocol default
// ports and deadlines (spec.md §2, §5).
func Default() *Config {
	return &Config{
		SchemaVersion: CurrentSchemaVersion,
		LogLevel:      "info",
		Discovery:     &DiscoveryConfig{},
		Services: &ServicesConfig{
			ARC:      &ServiceConfig{LocalPort: 44440, DeadlineMS: 1000},
			CMC:      &ServiceConfig{LocalPort: 48800, DeadlineMS: 1000},
			Settings: &ServiceConfig{LocalPort: 48700, DeadlineMS: 1000},
			Volume:   &ServiceConfig{LocalPort: 8751, DeadlineMS: 1000},
		},
	}
}

// fillDefaults replaces any nil sub-block with its documented default so
// callers never need nil-guards after loading a partial config file.
func (c *Config) fillDefaults() {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Discovery == nil {
		c.Discovery = d.Discovery
	}
	if c.Services == nil {
		c.Services = d.Services
		return
	}
	if c.Services.ARC == nil {
		c.Services.ARC = d.Services.ARC
	}
	if c.Services.CMC == nil {
		c.Services.CMC = d.Services.CMC
	}
	if c.Services.Settings == nil {
		c.Services.Settings = d.Services.Settings
	}
	if c.Services.Volume == nil {
		c.Services.Volume = d.Services.Volume
	}
}

package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/yegors/stdatmo/internal/atmosphere"
	"github.com/yegors/stdatmo/internal/profile"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server    ServerConfig    `toml:"server"`    // HTTP server settings
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
	Model     ModelConfig     `toml:"model"`     // Atmosphere/gravity domain policy
	Profile   ProfileConfig   `toml:"profile"`   // Altitude sweep defaults and limits
	Metrics   MetricsConfig   `toml:"metrics"`   // Prometheus exposition
	WebSocket WebSocketConfig `toml:"websocket"` // Profile streaming settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port             int    `toml:"port"`                  // Primary HTTP port for the server
	Host             string `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	ReadTimeoutSecs  int    `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs int    `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout, required for websocket streaming)
	IdleTimeoutSecs  int    `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
	AdditionalPorts  []int  `toml:"additional_ports"`      // Additional HTTP ports to listen on
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// ModelConfig controls how out-of-envelope altitudes are handled
type ModelConfig struct {
	MinAltitudeM         *float64 `toml:"min_altitude_m"`          // Lowest accepted geometric altitude in metres (default -5000)
	ValidateTableOnStart bool     `toml:"validate_table_on_start"` // Check the layer table closure before serving
	WarnAboveCeilingM    float64  `toml:"warn_above_ceiling_m"`    // Log a warning for requests above this altitude (0 = top layer base)
}

// ProfileConfig contains defaults for altitude sweeps
type ProfileConfig struct {
	FromM      float64 `toml:"from_m"`      // Default sweep start (m)
	ToM        float64 `toml:"to_m"`        // Default sweep end (m)
	StepM      float64 `toml:"step_m"`      // Default sweep step (m)
	MaxSamples int     `toml:"max_samples"` // Upper bound on samples per request
}

// MetricsConfig contains Prometheus settings
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"` // Expose /metrics
	Path    string `toml:"path"`    // Path for the metrics handler
}

// WebSocketConfig contains profile streaming settings
type WebSocketConfig struct {
	SampleIntervalMs int `toml:"sample_interval_ms"` // Delay between streamed samples (0 = as fast as possible)
	WriteTimeoutSecs int `toml:"write_timeout_seconds"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	c := &Config{
		Server: ServerConfig{Port: 8080, Host: "127.0.0.1"},
	}
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return c
}

// FloorM returns the configured model floor
func (m ModelConfig) FloorM() float64 {
	if m.MinAltitudeM == nil {
		return atmosphere.DefaultFloorM
	}
	return *m.MinAltitudeM
}

// Limits returns the sweep limits derived from the model and profile sections
func (c *Config) Limits() profile.Limits {
	return profile.Limits{FloorM: c.Model.FloorM(), MaxSamples: c.Profile.MaxSamples}
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	meta, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	// List of paths to check in order of preference
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			// File exists, try to load it
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	// Validate AdditionalPorts
	portsSeen := make(map[int]bool)
	portsSeen[c.Server.Port] = true
	for _, p := range c.Server.AdditionalPorts {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("invalid additional server port: %d", p)
		}
		if portsSeen[p] {
			return fmt.Errorf("duplicate port configured: %d (primary or additional)", p)
		}
		portsSeen[p] = true
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.ReadTimeoutSecs < 0 || c.Server.WriteTimeoutSecs < 0 || c.Server.IdleTimeoutSecs < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if c.Server.ReadTimeoutSecs == 0 {
		c.Server.ReadTimeoutSecs = 10
	}
	if c.Server.IdleTimeoutSecs == 0 {
		c.Server.IdleTimeoutSecs = 60
	}

	if err := c.ValidateLogging(); err != nil {
		return err
	}
	if err := c.ValidateModel(); err != nil {
		return err
	}
	if err := c.ValidateProfile(); err != nil {
		return err
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %s", c.Metrics.Path)
	}

	if c.WebSocket.SampleIntervalMs < 0 {
		return fmt.Errorf("invalid websocket sample_interval_ms: %d (must be >= 0)", c.WebSocket.SampleIntervalMs)
	}
	if c.WebSocket.WriteTimeoutSecs <= 0 {
		c.WebSocket.WriteTimeoutSecs = 10
	}

	return nil
}

// ValidateLogging validates the logging section
func (c *Config) ValidateLogging() error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s (must be 'console' or 'json')", c.Logging.Format)
	}
	return nil
}

// ValidateModel validates the model domain policy
func (c *Config) ValidateModel() error {
	floor := c.Model.FloorM()
	if math.IsNaN(floor) || math.IsInf(floor, 0) {
		return fmt.Errorf("invalid min_altitude_m: must be finite")
	}
	if floor > 0 {
		return fmt.Errorf("invalid min_altitude_m: %g (must be <= 0 so sea level is in range)", floor)
	}
	if c.Model.WarnAboveCeilingM == 0 {
		c.Model.WarnAboveCeilingM = atmosphere.GeometricAltitude(atmosphere.StandardLayers.Top())
	}
	if c.Model.WarnAboveCeilingM < 0 {
		return fmt.Errorf("invalid warn_above_ceiling_m: %g", c.Model.WarnAboveCeilingM)
	}
	return nil
}

// ValidateProfile validates sweep defaults. When nothing is configured it
// applies -1000..86900 m at 100 m, the 880 altitudes of the classic
// -1 km to 87 km (exclusive) table.
func (c *Config) ValidateProfile() error {
	if c.Profile.FromM == 0 && c.Profile.ToM == 0 && c.Profile.StepM == 0 {
		c.Profile.FromM = -1000
		c.Profile.ToM = 86900
		c.Profile.StepM = 100
	}
	if c.Profile.MaxSamples == 0 {
		c.Profile.MaxSamples = profile.DefaultLimits.MaxSamples
	}
	if c.Profile.MaxSamples < 0 {
		return fmt.Errorf("invalid profile max_samples: %d", c.Profile.MaxSamples)
	}
	if c.Profile.FromM < c.Model.FloorM() {
		return fmt.Errorf("profile from_m %g is below model min_altitude_m %g", c.Profile.FromM, c.Model.FloorM())
	}

	n, err := profile.Count(c.Profile.FromM, c.Profile.ToM, c.Profile.StepM)
	if err != nil {
		return fmt.Errorf("invalid default profile: %w", err)
	}
	if n > c.Profile.MaxSamples {
		return fmt.Errorf("default profile has %d samples, above max_samples %d", n, c.Profile.MaxSamples)
	}
	return nil
}

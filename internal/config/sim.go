package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/odometry.sim/internal/noisemodel"
)

// DefaultConfigPath is the path to the canonical simulation defaults file.
// This is the single source of truth for all default simulation values.
const DefaultConfigPath = "config/sim.defaults.json"

// SimConfig represents the root configuration for the simulator. The schema
// matches the /api/config endpoint so the same JSON can be used for both
// startup configuration and runtime inspection.
type SimConfig struct {
	// Noise model selection for new agents.
	DefaultRobot      *string  `json:"default_robot,omitempty"`
	DefaultController *string  `json:"default_controller,omitempty"`
	NoiseMultiplier   *float64 `json:"noise_multiplier,omitempty"`

	// Step sizes used by batch trials and by clients that omit an amount.
	ForwardStepM *float64 `json:"forward_step_m,omitempty"`
	TurnStepDeg  *float64 `json:"turn_step_deg,omitempty"`

	// Seed for agent random streams. Agents created over the API offset
	// this base seed so concurrent agents draw independent noise.
	Seed *uint64 `json:"seed,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrUint64(v uint64) *uint64    { return &v }

// EmptySimConfig returns a SimConfig with all fields set to nil.
// Use LoadSimConfig to load actual values from the defaults file.
func EmptySimConfig() *SimConfig {
	return &SimConfig{}
}

// LoadSimConfig loads a SimConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadSimConfig(path string) (*SimConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptySimConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical simulation defaults from
// DefaultConfigPath. It searches for the file in the current directory and
// common parent directories. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *SimConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadSimConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *SimConfig) Validate() error {
	robot := noisemodel.Robot(c.GetDefaultRobot())
	controller := noisemodel.Controller(c.GetDefaultController())
	if _, err := noisemodel.Lookup(robot, controller); err != nil {
		return err
	}

	if c.NoiseMultiplier != nil && *c.NoiseMultiplier < 0 {
		return fmt.Errorf("noise_multiplier must be non-negative, got %f", *c.NoiseMultiplier)
	}

	if c.ForwardStepM != nil && *c.ForwardStepM <= 0 {
		return fmt.Errorf("forward_step_m must be positive, got %f", *c.ForwardStepM)
	}

	if c.TurnStepDeg != nil && *c.TurnStepDeg <= 0 {
		return fmt.Errorf("turn_step_deg must be positive, got %f", *c.TurnStepDeg)
	}

	return nil
}

// GetDefaultRobot returns the default_robot value or the default.
func (c *SimConfig) GetDefaultRobot() string {
	if c.DefaultRobot == nil || *c.DefaultRobot == "" {
		return string(noisemodel.DefaultRobot)
	}
	return *c.DefaultRobot
}

// GetDefaultController returns the default_controller value or the default.
func (c *SimConfig) GetDefaultController() string {
	if c.DefaultController == nil || *c.DefaultController == "" {
		return string(noisemodel.DefaultController)
	}
	return *c.DefaultController
}

// GetNoiseMultiplier returns the noise_multiplier value or the default.
func (c *SimConfig) GetNoiseMultiplier() float64 {
	if c.NoiseMultiplier == nil {
		return 1.0 // default: unscaled fitted noise
	}
	return *c.NoiseMultiplier
}

// GetForwardStepM returns the forward_step_m value or the default.
func (c *SimConfig) GetForwardStepM() float64 {
	if c.ForwardStepM == nil {
		return 0.25
	}
	return *c.ForwardStepM
}

// GetTurnStepDeg returns the turn_step_deg value or the default.
func (c *SimConfig) GetTurnStepDeg() float64 {
	if c.TurnStepDeg == nil {
		return 10.0
	}
	return *c.TurnStepDeg
}

// GetSeed returns the seed value or the default.
func (c *SimConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 1
	}
	return *c.Seed
}

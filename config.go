package physix

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Config holds the world settings. It can be read from a YAML file:
//
//	gravity: [0, -9.81, 0]
//	max_step: 0.1
//	sleep_threshold: 0.05
//	sleep_time: 1.0
//	debug: false
//	log_prefix: physix
type Config struct {
	Gravity        mgl64.Vec3 `yaml:"gravity"`
	MaxStep        float64    `yaml:"max_step"`
	SleepThreshold float64    `yaml:"sleep_threshold"`
	SleepTime      float64    `yaml:"sleep_time"` // 0 disables auto-sleep
	Debug          bool       `yaml:"debug"`
	LogPrefix      string     `yaml:"log_prefix"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:        mgl64.Vec3{0, -9.81, 0},
		MaxStep:        1.0,
		SleepThreshold: 0.05,
		SleepTime:      0,
		LogPrefix:      "physix",
	}
}

func (c Config) Validate() error {
	for i := 0; i < 3; i++ {
		if math.IsNaN(c.Gravity[i]) || math.IsInf(c.Gravity[i], 0) {
			return invalidf("gravity must be finite, got %v", c.Gravity)
		}
	}
	if !(c.MaxStep > 0) || math.IsInf(c.MaxStep, 0) {
		return invalidf("max_step must be positive and finite, got %v", c.MaxStep)
	}
	if math.IsNaN(c.SleepThreshold) || c.SleepThreshold < 0 {
		return invalidf("sleep_threshold must be >= 0, got %v", c.SleepThreshold)
	}
	if math.IsNaN(c.SleepTime) || c.SleepTime < 0 {
		return invalidf("sleep_time must be >= 0, got %v", c.SleepTime)
	}
	return nil
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// not an error and yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

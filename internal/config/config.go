package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ossian-dev/pendguard/internal/pendulum"
	"github.com/ossian-dev/pendguard/internal/physics"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
)

type Config struct {
	Scenario  string          `yaml:"scenario"`
	Dt        float64         `yaml:"dt"`
	Duration  float64         `yaml:"duration"`
	InitState InitStateConfig `yaml:"init_state"`
	Noise     NoiseConfig     `yaml:"noise"`
	Physical  PhysicalConfig  `yaml:"physical"`
	Faults    []FaultConfig   `yaml:"faults,omitempty"`
}

type InitStateConfig struct {
	Theta1 float64 `yaml:"theta1"`
	Omega1 float64 `yaml:"omega1"`
	Theta2 float64 `yaml:"theta2"`
	Omega2 float64 `yaml:"omega2"`
}

type NoiseConfig struct {
	Encoder float64 `yaml:"encoder"`
	Gyro    float64 `yaml:"gyro"`
	Accel   float64 `yaml:"accel"`
}

type PhysicalConfig struct {
	M1        float64 `yaml:"m1"`
	M2        float64 `yaml:"m2"`
	L1        float64 `yaml:"l1"`
	L2        float64 `yaml:"l2"`
	Gravity   float64 `yaml:"gravity"`
	B1        float64 `yaml:"b1"`
	B2        float64 `yaml:"b2"`
	TorqueMax float64 `yaml:"torque_max"`
}

// FaultConfig injects a hard sensor failure at a simulation time. The
// fault is permanent for the rest of the run.
type FaultConfig struct {
	Time   float64 `yaml:"time"`
	Sensor int     `yaml:"sensor"`
}

func DefaultConfig() *Config {
	p := physics.DefaultParams()
	return &Config{
		Scenario: "small",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Noise:    NoiseConfig{Encoder: 0.001, Gyro: 0.01, Accel: 0.1},
		Physical: PhysicalConfig{
			M1: p.M1, M2: p.M2, L1: p.L1, L2: p.L2,
			Gravity: p.Gravity, B1: p.B1, B2: p.B2, TorqueMax: p.TorqueMax,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	for _, f := range c.Faults {
		if f.Sensor < 0 || f.Sensor >= pendulum.NumSensors {
			return fmt.Errorf("fault sensor index %d out of range", f.Sensor)
		}
		if f.Time < 0 {
			return fmt.Errorf("fault time must be non-negative, got %g", f.Time)
		}
	}
	return c.Params().Validate()
}

// Params converts the physical section to validated simulation parameters.
func (c *Config) Params() physics.Params {
	return physics.Params{
		M1: c.Physical.M1, M2: c.Physical.M2,
		L1: c.Physical.L1, L2: c.Physical.L2,
		Gravity: c.Physical.Gravity,
		B1:      c.Physical.B1, B2: c.Physical.B2,
		TorqueMax: c.Physical.TorqueMax,
	}
}

// NoiseModel converts the noise section to the sensor noise model.
func (c *Config) NoiseModel() pendulum.Noise {
	return pendulum.Noise{
		Encoder: c.Noise.Encoder,
		Gyro:    c.Noise.Gyro,
		Accel:   c.Noise.Accel,
	}
}

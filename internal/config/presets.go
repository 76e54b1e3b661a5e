package config

import "sort"

// Presets are the stock fault-tolerance scenarios. Each returns a fresh
// config so callers may mutate freely.
var presets = map[string]func() *Config{
	"small": func() *Config {
		cfg := DefaultConfig()
		cfg.Scenario = "small"
		cfg.Duration = 10.0
		cfg.InitState = InitStateConfig{Theta1: 0.1, Theta2: 0.05}
		cfg.Noise = NoiseConfig{Encoder: 0.001, Gyro: 0.01, Accel: 0.1}
		return cfg
	},
	"excursion": func() *Config {
		cfg := DefaultConfig()
		cfg.Scenario = "excursion"
		cfg.Duration = 15.0
		cfg.InitState = InitStateConfig{Theta1: 0.5, Theta2: -0.4}
		cfg.Noise = NoiseConfig{Encoder: 0.002, Gyro: 0.02, Accel: 0.2}
		return cfg
	},
	"velocity": func() *Config {
		cfg := DefaultConfig()
		cfg.Scenario = "velocity"
		cfg.Duration = 20.0
		cfg.InitState = InitStateConfig{Omega1: 2.0, Omega2: 1.5}
		cfg.Noise = NoiseConfig{Encoder: 0.001, Gyro: 0.05, Accel: 0.3}
		return cfg
	},
	"failure": func() *Config {
		cfg := DefaultConfig()
		cfg.Scenario = "failure"
		cfg.Duration = 10.0
		cfg.InitState = InitStateConfig{Theta1: 0.2, Theta2: 0.1}
		cfg.Noise = NoiseConfig{Encoder: 0.001, Gyro: 0.01, Accel: 0.1}
		cfg.Faults = []FaultConfig{{Time: 2.5, Sensor: 2}}
		return cfg
	},
}

// GetPreset returns a named scenario config, or nil if unknown.
func GetPreset(name string) *Config {
	build, ok := presets[name]
	if !ok {
		return nil
	}
	return build()
}

// ListPresets returns the available scenario names sorted.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.Params().TorqueMax != 10.0 {
		t.Errorf("expected default torque limit 10, got %g", cfg.Params().TorqueMax)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("excursion")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.InitState.Theta1 != 0.5 || cfg.InitState.Theta2 != -0.4 {
		t.Errorf("unexpected excursion initial state: %+v", cfg.InitState)
	}
	if cfg.Duration != 15.0 {
		t.Errorf("expected duration 15, got %g", cfg.Duration)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestPresetIsolation(t *testing.T) {
	a := GetPreset("small")
	a.Dt = 99

	b := GetPreset("small")
	if b.Dt == 99 {
		t.Error("presets must not share state between calls")
	}
}

func TestFailurePresetFault(t *testing.T) {
	cfg := GetPreset("failure")
	if len(cfg.Faults) != 1 {
		t.Fatalf("expected 1 fault, got %d", len(cfg.Faults))
	}
	if cfg.Faults[0].Time != 2.5 || cfg.Faults[0].Sensor != 2 {
		t.Errorf("unexpected fault: %+v", cfg.Faults[0])
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != 4 {
		t.Fatalf("expected 4 presets, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("preset names not sorted: %v", names)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("failure")
	cfg.Dt = 0.005
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Dt != 0.005 {
		t.Errorf("expected dt 0.005, got %g", loaded.Dt)
	}
	if loaded.Scenario != "failure" {
		t.Errorf("expected scenario failure, got %s", loaded.Scenario)
	}
	if len(loaded.Faults) != 1 || loaded.Faults[0].Sensor != 2 {
		t.Errorf("faults lost in round trip: %+v", loaded.Faults)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")

	if err := os.WriteFile(path, []byte("dt: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected negative dt to be rejected")
	}

	if err := os.WriteFile(path, []byte("faults:\n  - {time: 1.0, sensor: 9}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected out-of-range sensor index to be rejected")
	}
}

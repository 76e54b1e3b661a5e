package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ossian-dev/pendguard/internal/mode"
	"github.com/ossian-dev/pendguard/internal/scenario"
	"github.com/ossian-dev/pendguard/internal/sim"
)

func TestPlots(t *testing.T) {
	dir := t.TempDir()

	result := &scenario.Result{
		Scenario:    "small",
		Times:       []float64{0, 0.01, 0.02},
		States:      []sim.State{{0.1, 0, 0.05, 0}, {0.11, 0.1, 0.05, 0}, {0.12, 0.2, 0.06, 0.1}},
		Torques:     []float64{2.6, 2.6, 0.6},
		Confidences: []float64{0.468, 0.468, 0.468},
		Modes:       []mode.Mode{mode.Nominal, mode.Nominal, mode.Degraded},
	}

	if err := Plots(dir, result); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"angles.png", "torque.png", "confidence.png", "mode.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestPlotsEmptyResult(t *testing.T) {
	if err := Plots(t.TempDir(), &scenario.Result{}); err == nil {
		t.Error("expected error for empty result")
	}
}

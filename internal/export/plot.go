package export

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ossian-dev/pendguard/internal/scenario"
)

// Plots renders a scenario run to PNG files in outDir: joint angles,
// applied torque, fused confidence, and the mode timeline.
func Plots(outDir string, result *scenario.Result) error {
	if result.Steps() == 0 {
		return fmt.Errorf("export: empty result")
	}

	theta1 := make([]float64, result.Steps())
	theta2 := make([]float64, result.Steps())
	modes := make([]float64, result.Steps())
	for i, x := range result.States {
		theta1[i] = x[0]
		theta2[i] = x[2]
		modes[i] = float64(result.Modes[i])
	}

	if err := saveAnglesPlot(outDir, result.Times, theta1, theta2); err != nil {
		return err
	}
	if err := saveLinePlot(outDir, "torque.png", "Applied Torque", "time (s)", "torque (Nm)",
		result.Times, result.Torques); err != nil {
		return err
	}
	if err := saveLinePlot(outDir, "confidence.png", "Fused Confidence", "time (s)", "confidence",
		result.Times, result.Confidences); err != nil {
		return err
	}
	return saveLinePlot(outDir, "mode.png", "Operating Mode", "time (s)", "mode",
		result.Times, modes)
}

func saveAnglesPlot(outDir string, times, theta1, theta2 []float64) error {
	p := plot.New()
	p.Title.Text = "Joint Angles"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "angle (rad)"
	p.Legend.Top = true

	l1, err := plotter.NewLine(points(times, theta1))
	if err != nil {
		return err
	}
	l2, err := plotter.NewLine(points(times, theta2))
	if err != nil {
		return err
	}
	l2.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(l1, l2)
	p.Legend.Add("theta1", l1)
	p.Legend.Add("theta2", l2)

	return p.Save(8*vg.Inch, 6*vg.Inch, filepath.Join(outDir, "angles.png"))
}

func saveLinePlot(outDir, filename, title, xlabel, ylabel string, xs, ys []float64) error {
	if len(xs) != len(ys) || len(xs) == 0 {
		return fmt.Errorf("export: plot data invalid for %s", filename)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel

	line, err := plotter.NewLine(points(xs, ys))
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	return p.Save(8*vg.Inch, 6*vg.Inch, filepath.Join(outDir, filename))
}

func points(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

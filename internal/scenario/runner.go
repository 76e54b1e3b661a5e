package scenario

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/ossian-dev/pendguard/internal/config"
	"github.com/ossian-dev/pendguard/internal/mode"
	"github.com/ossian-dev/pendguard/internal/pendulum"
	"github.com/ossian-dev/pendguard/internal/sim"
)

// Result holds the full trace and summary of one scenario run.
type Result struct {
	Scenario    string
	Times       []float64
	States      []sim.State
	Torques     []float64
	Confidences []float64
	Modes       []mode.Mode
	Metrics     map[string]float64
	Stats       pendulum.Statistics
	FinalMode   mode.Mode
	Transitions int
}

// Steps returns the number of recorded control ticks.
func (r *Result) Steps() int { return len(r.Times) }

// Runner executes one closed-loop scenario: sensor refresh, fault
// injection, control step, physics integration, per-tick.
type Runner struct {
	cfg       *config.Config
	log       zerolog.Logger
	metrics   []sim.Metric
	observers []sim.Observer
}

func NewRunner(cfg *config.Config, log zerolog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		cfg: cfg,
		log: log.With().Str("scenario", cfg.Scenario).Logger(),
	}, nil
}

func (r *Runner) AddMetric(m sim.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o sim.Observer) { r.observers = append(r.observers, o) }

// Run executes the scenario to completion or context cancellation.
// Injected faults are re-applied every tick after their trigger time
// because the sensor refresh overwrites the whole suite.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.cfg

	ctrl, err := pendulum.New(cfg.Dt)
	if err != nil {
		return nil, err
	}
	if err := ctrl.SetParams(cfg.Params()); err != nil {
		return nil, err
	}

	ctrl.Kin.Theta1 = cfg.InitState.Theta1
	ctrl.Kin.Omega1 = cfg.InitState.Omega1
	ctrl.Kin.Theta2 = cfg.InitState.Theta2
	ctrl.Kin.Omega2 = cfg.InitState.Omega2

	noise := cfg.NoiseModel()
	// Round, don't truncate: duration/dt pairs like 0.3/0.1 are not exactly
	// representable and would otherwise lose the final step.
	steps := int(math.Round(cfg.Duration / cfg.Dt))

	result := &Result{
		Scenario:    cfg.Scenario,
		Times:       make([]float64, 0, steps),
		States:      make([]sim.State, 0, steps),
		Torques:     make([]float64, 0, steps),
		Confidences: make([]float64, 0, steps),
		Modes:       make([]mode.Mode, 0, steps),
		Metrics:     make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	logStride := int(1.0 / cfg.Dt)
	if logStride < 1 {
		logStride = 1
	}

	r.log.Info().
		Float64("dt", cfg.Dt).
		Float64("duration", cfg.Duration).
		Int("steps", steps).
		Msg("scenario start")

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt

		ctrl.UpdateSensors(noise)
		for _, f := range cfg.Faults {
			if t >= f.Time {
				ctrl.FailSensor(f.Sensor)
			}
		}

		torque := ctrl.ControlStep()
		ctrl.Integrate(torque)

		x := ctrl.Kin.Vector()
		if !x.IsValid() {
			r.log.Error().Float64("t", t).Msg("state diverged to NaN/Inf")
			return result, &sim.StepError{Step: i, Time: t, Wrapped: sim.ErrInvalidState}
		}

		u := sim.Control{torque}
		for _, m := range r.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range r.observers {
			obs.OnStep(x, u, t)
		}

		result.Times = append(result.Times, t)
		result.States = append(result.States, x)
		result.Torques = append(result.Torques, torque)
		result.Confidences = append(result.Confidences, ctrl.Control.Confidence)
		result.Modes = append(result.Modes, ctrl.Modes.Current())

		if i%logStride == 0 {
			r.log.Debug().
				Float64("t", t).
				Float64("theta1", ctrl.Kin.Theta1).
				Float64("theta2", ctrl.Kin.Theta2).
				Float64("torque", torque).
				Float64("confidence", ctrl.Control.Confidence).
				Stringer("mode", ctrl.Modes.Current()).
				Msg("tick")
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Stats = ctrl.Stats
	result.FinalMode = ctrl.Modes.Current()
	result.Transitions = ctrl.Modes.Transitions()

	r.log.Info().
		Stringer("final_mode", result.FinalMode).
		Int("transitions", result.Transitions).
		Int("uncontrollable_steps", result.Stats.UncontrollableSteps).
		Msg("scenario complete")

	return result, nil
}

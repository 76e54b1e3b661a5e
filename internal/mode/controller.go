package mode

import "github.com/ossian-dev/pendguard/internal/control"

// Transition thresholds. The emergency floor applies from every mode with
// no hysteresis and no dwell gating.
const (
	emergencyFloor  = 0.05
	nominalExit     = 0.65
	nominalRecover  = 0.75
	degradedExit    = 0.35
	degradedRecover = 0.45
)

// historySize must be a power of two for the ring index mask.
const historySize = 16

// Controller is the hysteretic, dwell-time-gated mode state machine.
// Single-writer: one Update per control tick.
type Controller struct {
	current     Mode
	previous    Mode
	timeInMode  float64
	elapsed     float64
	transitions int

	history    [historySize]float64
	historyIdx int

	configs [NumModes]Config
}

func NewController() *Controller {
	return &Controller{configs: DefaultConfigs()}
}

func (c *Controller) Current() Mode       { return c.current }
func (c *Controller) Previous() Mode      { return c.previous }
func (c *Controller) TimeInMode() float64 { return c.timeInMode }
func (c *Controller) Transitions() int    { return c.transitions }

// Runtime returns total time accumulated across all modes.
func (c *Controller) Runtime() float64 { return c.elapsed + c.timeInMode }

// Config returns the configuration for a mode.
func (c *Controller) Config(m Mode) Config { return c.configs[m] }

// History returns the confidence ring buffer in insertion order, oldest
// first. Diagnostic only; transition logic never consumes it.
func (c *Controller) History() []float64 {
	out := make([]float64, historySize)
	for i := 0; i < historySize; i++ {
		out[i] = c.history[(c.historyIdx+i)&(historySize-1)]
	}
	return out
}

// target computes the candidate mode for a confidence level. Emergency
// bypasses hysteresis entirely; Emergency itself is terminal and only
// Force may leave it.
func target(confidence float64, current Mode) Mode {
	if confidence < emergencyFloor {
		return Emergency
	}

	switch current {
	case Nominal:
		if confidence < nominalExit {
			return Degraded
		}
		return Nominal
	case Degraded:
		if confidence > nominalRecover {
			return Nominal
		}
		if confidence < degradedExit {
			return Safe
		}
		return Degraded
	case Safe:
		if confidence > degradedRecover {
			return Degraded
		}
		return Safe
	case Emergency:
		return Emergency
	}

	return current
}

// Update advances the machine by one tick of dt seconds given the latest
// aggregated confidence, applies any dwell-permitted transition, and
// returns the now-active mode's control-law parameters.
func (c *Controller) Update(confidence, dt float64) control.Map {
	c.timeInMode += dt

	c.history[c.historyIdx] = confidence
	c.historyIdx = (c.historyIdx + 1) & (historySize - 1)

	next := target(confidence, c.current)
	if next != c.current {
		// A candidate applies only after the current mode's dwell time,
		// except Emergency which always applies immediately.
		if c.timeInMode >= c.configs[c.current].DwellTime || next == Emergency {
			c.apply(next)
		}
	}

	return c.configs[c.current].Control
}

// Force overrides the state machine regardless of dwell time. This is the
// operator escape hatch out of Emergency.
func (c *Controller) Force(m Mode) {
	c.apply(m)
}

func (c *Controller) apply(next Mode) {
	c.previous = c.current
	c.current = next
	c.elapsed += c.timeInMode
	c.timeInMode = 0
	c.transitions++
}

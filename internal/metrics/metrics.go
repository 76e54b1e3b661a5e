package metrics

import (
	"math"

	"github.com/ossian-dev/pendguard/internal/sim"
)

// EnergyDrift tracks the largest deviation of total mechanical energy from
// its value at the first observation. Only meaningful for undamped,
// unactuated runs; with damping or control it measures injected/removed
// energy instead.
type EnergyDrift struct {
	name    string
	dyn     sim.Dynamics
	initial float64
	current float64
	max     float64
	samples int
}

func NewEnergyDrift(dyn sim.Dynamics) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		dyn:  dyn,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x sim.State, u sim.Control, t float64) {
	ec, ok := e.dyn.(sim.EnergyComputer)
	if !ok {
		return
	}

	energy := ec.Energy(x)
	if e.samples == 0 {
		e.initial = energy
	}
	e.current = energy
	e.samples++

	if drift := math.Abs(energy - e.initial); drift > e.max {
		e.max = drift
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.max
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.current = 0
	e.max = 0
	e.samples = 0
}

// Controllability reports the fraction of observed steps for which the
// supplied predicate held.
type Controllability struct {
	name      string
	predicate func(x sim.State) bool
	inside    int
	samples   int
}

func NewControllability(predicate func(x sim.State) bool) *Controllability {
	return &Controllability{
		name:      "controllability",
		predicate: predicate,
	}
}

func (c *Controllability) Name() string { return c.name }

func (c *Controllability) Observe(x sim.State, u sim.Control, t float64) {
	c.samples++
	if c.predicate(x) {
		c.inside++
	}
}

func (c *Controllability) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return float64(c.inside) / float64(c.samples)
}

func (c *Controllability) Reset() {
	c.inside = 0
	c.samples = 0
}

// ControlEffort accumulates mean absolute actuator command.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string { return c.name }

func (c *ControlEffort) Observe(x sim.State, u sim.Control, t float64) {
	for _, val := range u {
		c.sum += math.Abs(val)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

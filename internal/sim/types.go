package sim

import "math"

// State is a dense vector of generalized coordinates and velocities.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Control is a vector of actuator commands.
type Control []float64

// Dynamics describes a controlled ODE system dx/dt = f(x, u, t).
type Dynamics interface {
	Derivative(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// EnergyComputer is implemented by systems with a known mechanical energy.
type EnergyComputer interface {
	Energy(x State) float64
}

// Integrator advances a dynamics system by one fixed timestep.
type Integrator interface {
	Step(dyn Dynamics, x State, u Control, t float64, dt float64) State
}

// Metric accumulates a scalar diagnostic over a run.
type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

// Observer receives every step of a run.
type Observer interface {
	OnStep(x State, u Control, t float64)
}

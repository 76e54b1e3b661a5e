package integrators

import "github.com/ossian-dev/pendguard/internal/sim"

// Euler is the explicit first-order integrator. Kept for integrator
// comparisons; the control loop itself always runs RK4.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t, dt float64) sim.State {
	dx := dyn.Derivative(x, u, t)
	result := make(sim.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

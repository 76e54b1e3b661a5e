package physics

import (
	"math"

	"github.com/ossian-dev/pendguard/internal/sim"
)

// Controllable-region policy bounds. These mark where the small-angle
// control assumptions hold, not physical limits.
const (
	MaxControllableAngle    = 0.5 // rad, ~28 degrees
	MaxControllableVelocity = 2.0 // rad/s
)

// DoublePendulum is a planar double pendulum actuated by a single torque at
// the first joint, with viscous damping at both joints.
//
// State vector: [theta1, omega1, theta2, omega2]. Angles measured from the
// hanging-down equilibrium.
type DoublePendulum struct {
	P Params
}

func NewDoublePendulum(p Params) (*DoublePendulum, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &DoublePendulum{P: p}, nil
}

func (d *DoublePendulum) StateDim() int   { return 4 }
func (d *DoublePendulum) ControlDim() int { return 1 }

// Derivative evaluates the closed-form Lagrangian equations of motion.
// Both accelerations share the denominator m1 + m2*sin²(Δ), Δ = θ1 − θ2;
// the algebraic form is kept exactly as derived so numerical behavior is
// reproducible.
func (d *DoublePendulum) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	theta1, omega1, theta2, omega2 := x[0], x[1], x[2], x[3]
	m1, m2 := d.P.M1, d.P.M2
	l1, l2 := d.P.L1, d.P.L2
	g := d.P.Gravity

	torque := 0.0
	if len(u) > 0 {
		torque = u[0]
	}

	delta := theta1 - theta2
	sinD, cosD := math.Sin(delta), math.Cos(delta)
	denom := m1 + m2*sinD*sinD

	num1 := -m2*l1*omega1*omega1*sinD*cosD +
		m2*g*math.Sin(theta2)*cosD -
		m2*l2*omega2*omega2*sinD -
		(m1+m2)*g*math.Sin(theta1) -
		d.P.B1*omega1 +
		torque
	alpha1 := num1 / (l1 * denom)

	num2 := (m1+m2)*(l1*omega1*omega1*sinD-g*math.Sin(theta2)+g*math.Sin(theta1)*cosD) +
		m2*l2*omega2*omega2*sinD*cosD -
		d.P.B2*omega2 +
		torque*cosD
	alpha2 := num2 / (l2 * denom)

	return sim.State{omega1, alpha1, omega2, alpha2}
}

// Energy returns total mechanical energy, potential referenced to the
// hanging-down equilibrium.
func (d *DoublePendulum) Energy(x sim.State) float64 {
	theta1, omega1, theta2, omega2 := x[0], x[1], x[2], x[3]
	m1, m2 := d.P.M1, d.P.M2
	l1, l2 := d.P.L1, d.P.L2
	g := d.P.Gravity

	ke := 0.5 * m1 * l1 * l1 * omega1 * omega1
	cosDelta := math.Cos(theta1 - theta2)
	ke += 0.5 * m2 * (l1*l1*omega1*omega1 +
		l2*l2*omega2*omega2 +
		2*l1*l2*omega1*omega2*cosDelta)

	pe := -(m1+m2)*g*l1*math.Cos(theta1) - m2*g*l2*math.Cos(theta2)

	return ke + pe
}

// Controllable reports whether the state lies inside the policy region
// where both angles and both velocities are small enough for the linearized
// control assumptions to hold.
func (d *DoublePendulum) Controllable(x sim.State) bool {
	angleOK := math.Abs(x[0]) < MaxControllableAngle &&
		math.Abs(x[2]) < MaxControllableAngle
	velocityOK := math.Abs(x[1]) < MaxControllableVelocity &&
		math.Abs(x[3]) < MaxControllableVelocity
	return angleOK && velocityOK
}

// WrapAngle normalizes an angle into (-π, π] using floored modulo.
func WrapAngle(theta float64) float64 {
	w := math.Mod(theta+math.Pi, 2*math.Pi)
	if w <= 0 {
		w += 2 * math.Pi
	}
	return w - math.Pi
}

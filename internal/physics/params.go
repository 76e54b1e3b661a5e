package physics

import (
	"errors"
	"fmt"
)

const (
	DefaultMass    = 1.0
	DefaultLength  = 1.0
	DefaultGravity = 9.81
	DefaultDamping = 0.1
	DefaultTorque  = 10.0
)

var (
	ErrNonPositiveMass   = errors.New("physics: mass must be positive")
	ErrNonPositiveLength = errors.New("physics: length must be positive")
	ErrNonPositiveTorque = errors.New("physics: torque limit must be positive")
)

// Params is the physical description of the double pendulum. Immutable after
// configuration; validated once, never at run time.
type Params struct {
	M1, M2    float64 // masses (kg)
	L1, L2    float64 // link lengths (m)
	Gravity   float64 // m/s^2
	B1, B2    float64 // viscous joint damping (N*m*s/rad)
	TorqueMax float64 // actuator limit at joint 1 (N*m)
}

func DefaultParams() Params {
	return Params{
		M1: DefaultMass, M2: DefaultMass,
		L1: DefaultLength, L2: DefaultLength,
		Gravity:   DefaultGravity,
		B1:        DefaultDamping,
		B2:        DefaultDamping,
		TorqueMax: DefaultTorque,
	}
}

// Validate rejects parameter sets that would make the dynamics degenerate.
// Strictly positive masses keep the shared denominator m1 + m2*sin²(Δ)
// bounded away from zero.
func (p Params) Validate() error {
	if p.M1 <= 0 || p.M2 <= 0 {
		return fmt.Errorf("%w: m1=%g m2=%g", ErrNonPositiveMass, p.M1, p.M2)
	}
	if p.L1 <= 0 || p.L2 <= 0 {
		return fmt.Errorf("%w: l1=%g l2=%g", ErrNonPositiveLength, p.L1, p.L2)
	}
	if p.TorqueMax <= 0 {
		return fmt.Errorf("%w: tau_max=%g", ErrNonPositiveTorque, p.TorqueMax)
	}
	return nil
}

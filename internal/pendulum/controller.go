package pendulum

import (
	"fmt"
	"math"

	"github.com/ossian-dev/pendguard/internal/control"
	"github.com/ossian-dev/pendguard/internal/integrators"
	"github.com/ossian-dev/pendguard/internal/mode"
	"github.com/ossian-dev/pendguard/internal/physics"
	"github.com/ossian-dev/pendguard/internal/sim"
	"github.com/ossian-dev/pendguard/internal/ternary"
)

// NumSensors is the size of the instrument suite.
const NumSensors = 5

// Sensor indices, fixed order.
const (
	SensorEncoder1 = iota
	SensorEncoder2
	SensorGyro1
	SensorGyro2
	SensorAccel
)

// Kinematics is the full kinematic state. Alpha1/Alpha2 are a diagnostic
// recomputation of the derivative at the latest state and torque; they are
// never part of the integrated state vector.
type Kinematics struct {
	Theta1, Omega1 float64
	Theta2, Omega2 float64
	Alpha1, Alpha2 float64
}

// Vector packs the integrated state as [theta1, omega1, theta2, omega2].
func (k Kinematics) Vector() sim.State {
	return sim.State{k.Theta1, k.Omega1, k.Theta2, k.Omega2}
}

func (k *Kinematics) SetVector(x sim.State) {
	k.Theta1, k.Omega1, k.Theta2, k.Omega2 = x[0], x[1], x[2], x[3]
}

// Statistics accumulates run diagnostics. Reset only by explicit operator
// action, never by the loop itself.
type Statistics struct {
	Steps               int
	TotalEnergy         float64
	MaxAngle1           float64
	MaxAngle2           float64
	UncontrollableSteps int
}

// MeanEnergy returns cumulative energy divided by steps observed.
func (s Statistics) MeanEnergy() float64 {
	if s.Steps == 0 {
		return 0
	}
	return s.TotalEnergy / float64(s.Steps)
}

// Controller is the complete confidence-aware pendulum controller: sensor
// suite, kinematic state, physical parameters, control-loop state, mode
// state machine, and running statistics. It is a single unit of ownership:
// one call stack mutates it at a time, and no method blocks.
type Controller struct {
	Sensors [NumSensors]ternary.Reading
	Kin     Kinematics
	Control *control.State
	Modes   *mode.Controller
	Dt      float64
	Stats   Statistics

	dyn   *physics.DoublePendulum
	integ sim.Integrator
}

// New builds a controller with default physical parameters, full-trust
// sensors, and the stock mode table.
func New(dt float64) (*Controller, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("pendulum: timestep must be positive, got %g", dt)
	}

	dyn, err := physics.NewDoublePendulum(physics.DefaultParams())
	if err != nil {
		return nil, err
	}

	c := &Controller{
		Control: control.NewState(),
		Modes:   mode.NewController(),
		Dt:      dt,
		dyn:     dyn,
		integ:   integrators.NewRK4(),
	}

	for i := range c.Sensors {
		c.Sensors[i] = ternary.Reading{Value: ternary.True, Confidence: 0.9, Variance: 0.01}
	}

	return c, nil
}

// Params returns the active physical parameters.
func (c *Controller) Params() physics.Params {
	return c.dyn.P
}

// SetParams replaces the physical parameters after validating them.
// Misconfiguration is rejected here so the loop never has to check.
func (c *Controller) SetParams(p physics.Params) error {
	dyn, err := physics.NewDoublePendulum(p)
	if err != nil {
		return err
	}
	c.dyn = dyn
	return nil
}

// Energy returns total mechanical energy of the current state.
func (c *Controller) Energy() float64 {
	return c.dyn.Energy(c.Kin.Vector())
}

// Controllable reports whether the current state is inside the policy
// region where the control assumptions hold.
func (c *Controller) Controllable() bool {
	return c.dyn.Controllable(c.Kin.Vector())
}

// FailSensor injects a hard fault into sensor i: ternary False, zero
// confidence. The next control step aggregates to exactly zero trust.
func (c *Controller) FailSensor(i int) {
	c.Sensors[i].Fail()
}

// ControlStep runs one control iteration and returns the torque command.
//
// The mode machine is fed the previous step's aggregated confidence: mode
// decisions intentionally lag the control decision that produced the
// confidence they react to by exactly one tick.
func (c *Controller) ControlStep() float64 {
	energy := c.Energy()
	controllable := c.Controllable()

	params := c.Modes.Update(c.Control.Confidence, c.Dt)

	torque := c.Control.Step(c.Sensors[:], params)
	torque = control.Clamp(torque, -c.dyn.P.TorqueMax, c.dyn.P.TorqueMax)

	if c.Modes.Current() == mode.Emergency {
		torque = 0
	}

	c.Stats.Steps++
	c.Stats.TotalEnergy += energy
	if a := math.Abs(c.Kin.Theta1); a > c.Stats.MaxAngle1 {
		c.Stats.MaxAngle1 = a
	}
	if a := math.Abs(c.Kin.Theta2); a > c.Stats.MaxAngle2 {
		c.Stats.MaxAngle2 = a
	}
	if !controllable {
		c.Stats.UncontrollableSteps++
	}

	return torque
}

// Integrate advances the kinematic state by one timestep under the given
// torque, wraps both angles into (-pi, pi], and recomputes the diagnostic
// accelerations at the new state.
func (c *Controller) Integrate(torque float64) {
	u := sim.Control{torque}
	x := c.integ.Step(c.dyn, c.Kin.Vector(), u, 0, c.Dt)

	x[0] = physics.WrapAngle(x[0])
	x[2] = physics.WrapAngle(x[2])
	c.Kin.SetVector(x)

	dx := c.dyn.Derivative(x, u, 0)
	c.Kin.Alpha1 = dx[1]
	c.Kin.Alpha2 = dx[3]
}

// ForceMode is the operator escape hatch, the only way out of EMERGENCY.
// Leaving EMERGENCY rebases the rate limiter to the zero torque that was
// actually delivered, not the stale output recorded before the latch.
func (c *Controller) ForceMode(m mode.Mode) {
	if c.Modes.Current() == mode.Emergency && m != mode.Emergency {
		c.Control.Rebase(0)
	}
	c.Modes.Force(m)
}

// ResetStatistics clears run statistics and the control-loop state.
func (c *Controller) ResetStatistics() {
	c.Stats = Statistics{}
	c.Control.Reset()
}

package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/ossian-dev/pendguard/internal/integrators"
	"github.com/ossian-dev/pendguard/internal/sim"
)

func TestEquilibriumAtRest(t *testing.T) {
	dp, err := NewDoublePendulum(DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dx := dp.Derivative(sim.State{0, 0, 0, 0}, sim.Control{0}, 0)
	for i, v := range dx {
		if math.Abs(v) > 1e-12 {
			t.Errorf("derivative[%d] should be zero at hanging equilibrium, got %g", i, v)
		}
	}
}

func TestDerivativeSymmetry(t *testing.T) {
	dp, _ := NewDoublePendulum(DefaultParams())
	dp.P.B1, dp.P.B2 = 0, 0

	dx1 := dp.Derivative(sim.State{0.1, 0, 0.1, 0}, sim.Control{0}, 0)
	dx2 := dp.Derivative(sim.State{-0.1, 0, -0.1, 0}, sim.Control{0}, 0)

	if math.Abs(dx1[1]+dx2[1]) > 1e-9 {
		t.Errorf("alpha1 not antisymmetric: %g vs %g", dx1[1], dx2[1])
	}
	if math.Abs(dx1[3]+dx2[3]) > 1e-9 {
		t.Errorf("alpha2 not antisymmetric: %g vs %g", dx1[3], dx2[3])
	}
}

func TestEnergyConservationUndamped(t *testing.T) {
	p := DefaultParams()
	p.B1, p.B2 = 0, 0
	dp, _ := NewDoublePendulum(p)

	integ := integrators.NewRK4()
	x := sim.State{0.1, 0, 0.05, 0}
	u := sim.Control{0}
	dt := 0.001

	e0 := dp.Energy(x)
	for i := 0; i < 2000; i++ {
		x = integ.Step(dp, x, u, float64(i)*dt, dt)
	}

	drift := math.Abs(dp.Energy(x) - e0)
	if drift > 1e-7 {
		t.Errorf("energy drift %g exceeds tolerance over 2s undamped run", drift)
	}
}

func TestEnergyShrinksWithDamping(t *testing.T) {
	dp, _ := NewDoublePendulum(DefaultParams())

	integ := integrators.NewRK4()
	x := sim.State{0.3, 0, 0.2, 0}
	u := sim.Control{0}
	dt := 0.01

	e0 := dp.Energy(x)
	for i := 0; i < 1000; i++ {
		x = integ.Step(dp, x, u, float64(i)*dt, dt)
	}

	if dp.Energy(x) >= e0 {
		t.Errorf("damped run should dissipate energy: %g -> %g", e0, dp.Energy(x))
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{math.Pi / 2, math.Pi / 2},
		{-math.Pi / 2, -math.Pi / 2},
		{2 * math.Pi, 0},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5, 5 - 2*math.Pi},
	}

	for _, tt := range tests {
		got := WrapAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WrapAngle(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestWrapAngleRange(t *testing.T) {
	for theta := -20.0; theta < 20.0; theta += 0.137 {
		w := WrapAngle(theta)
		if w <= -math.Pi || w > math.Pi {
			t.Fatalf("WrapAngle(%g) = %g outside (-pi, pi]", theta, w)
		}
	}
}

func TestParamsValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		want   error
	}{
		{"zero m1", func(p *Params) { p.M1 = 0 }, ErrNonPositiveMass},
		{"negative m2", func(p *Params) { p.M2 = -1 }, ErrNonPositiveMass},
		{"zero l1", func(p *Params) { p.L1 = 0 }, ErrNonPositiveLength},
		{"negative l2", func(p *Params) { p.L2 = -0.5 }, ErrNonPositiveLength},
		{"zero torque limit", func(p *Params) { p.TorqueMax = 0 }, ErrNonPositiveTorque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if _, err := NewDoublePendulum(p); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestControllableRegion(t *testing.T) {
	dp, _ := NewDoublePendulum(DefaultParams())

	tests := []struct {
		name string
		x    sim.State
		want bool
	}{
		{"at rest", sim.State{0, 0, 0, 0}, true},
		{"small angles", sim.State{0.4, 1.0, -0.4, -1.0}, true},
		{"angle 1 too large", sim.State{0.6, 0, 0, 0}, false},
		{"angle 2 too large", sim.State{0, 0, -0.6, 0}, false},
		{"velocity 1 too large", sim.State{0, 2.5, 0, 0}, false},
		{"velocity 2 too large", sim.State{0, 0, 0, -2.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dp.Controllable(tt.x); got != tt.want {
				t.Errorf("Controllable(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

package pendulum

import (
	"math"

	"github.com/ossian-dev/pendguard/internal/ternary"
)

// Synthetic sensor confidence model. Each sensor reports a base confidence
// tied to the regime it measures well; suite-wide deratings stack
// multiplicatively on top.
const (
	encoderTrustGood = 0.90
	encoderTrustPoor = 0.30

	gyroTrustGood    = 0.85
	gyroTrustPoor    = 0.40
	gyroVelocityBand = 5.0 // rad/s

	accelTrustGood  = 0.80
	accelTrustPoor  = 0.20
	accelEnergyBand = 10.0 // J

	uncontrollableDerate = 0.3
	highEnergyDerate     = 0.5
	highEnergyThreshold  = 20.0 // J
)

// Noise is the per-family measurement noise used to populate sensor
// variances (variance = noise squared).
type Noise struct {
	Encoder float64
	Gyro    float64
	Accel   float64
}

// UpdateSensors refreshes all five readings from the current kinematic
// state. Values are set True unless a fault has been injected this step;
// a failed sensor is overwritten back to healthy on the next call, so fault
// injection must follow UpdateSensors within a tick.
func (c *Controller) UpdateSensors(n Noise) {
	controllable := c.Controllable()
	energy := c.Energy()

	encoderTrust := encoderTrustPoor
	if controllable {
		encoderTrust = encoderTrustGood
	}

	c.Sensors[SensorEncoder1] = ternary.Reading{
		Value:      ternary.True,
		Confidence: encoderTrust,
		Variance:   n.Encoder * n.Encoder,
	}
	c.Sensors[SensorEncoder2] = ternary.Reading{
		Value:      ternary.True,
		Confidence: encoderTrust,
		Variance:   n.Encoder * n.Encoder,
	}

	c.Sensors[SensorGyro1] = ternary.Reading{
		Value:      ternary.True,
		Confidence: gyroTrust(c.Kin.Omega1),
		Variance:   n.Gyro * n.Gyro,
	}
	c.Sensors[SensorGyro2] = ternary.Reading{
		Value:      ternary.True,
		Confidence: gyroTrust(c.Kin.Omega2),
		Variance:   n.Gyro * n.Gyro,
	}

	accelTrust := accelTrustPoor
	if energy < accelEnergyBand {
		accelTrust = accelTrustGood
	}
	c.Sensors[SensorAccel] = ternary.Reading{
		Value:      ternary.True,
		Confidence: accelTrust,
		Variance:   n.Accel * n.Accel,
	}

	if !controllable {
		for i := range c.Sensors {
			c.Sensors[i].Confidence *= uncontrollableDerate
		}
	}
	if energy > highEnergyThreshold {
		for i := range c.Sensors {
			c.Sensors[i].Confidence *= highEnergyDerate
		}
	}
}

func gyroTrust(omega float64) float64 {
	if math.Abs(omega) < gyroVelocityBand {
		return gyroTrustGood
	}
	return gyroTrustPoor
}

// Fuse runs the variance-weighted fusion over the full suite using the
// supplied weight table. Diagnostic; the control path aggregates with
// AggregateAND instead.
func (c *Controller) Fuse(w *ternary.WeightTable) ternary.FusionResult {
	return w.Fuse(c.Sensors[:])
}

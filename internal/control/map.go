package control

import "math"

// Map shapes the confidence-to-output law for one operating mode.
//
// Below ConfidenceLow effort increases as trust drops; above ConfidenceHigh
// effort eases as trust rises; in between the output holds at UNominal.
type Map struct {
	ConfidenceLow  float64
	ConfidenceHigh float64
	UMin           float64
	UNominal       float64
	UMax           float64
	GainIncrease   float64
	GainDecrease   float64
	RateLimit      float64
}

// Output maps a confidence through the three-region piecewise-linear law
// and clamps the result to [UMin, UMax].
func (m Map) Output(confidence float64) float64 {
	var output float64

	switch {
	case confidence < m.ConfidenceLow:
		deficit := m.ConfidenceLow - confidence
		output = m.UNominal + m.GainIncrease*deficit*(m.UMax-m.UNominal)
	case confidence > m.ConfidenceHigh:
		excess := confidence - m.ConfidenceHigh
		output = m.UNominal - m.GainDecrease*excess*(m.UNominal-m.UMin)
	default:
		output = m.UNominal
	}

	return Clamp(output, m.UMin, m.UMax)
}

// Clamp bounds x into [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// RateLimited bounds the change from previous to target by limit per step.
func RateLimited(target, previous, limit float64) float64 {
	delta := target - previous
	if math.Abs(delta) > limit {
		return previous + math.Copysign(limit, delta)
	}
	return target
}

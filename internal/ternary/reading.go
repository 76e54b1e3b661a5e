package ternary

// Reading is one sensor sample: a ternary validity value, a confidence in
// [0, 1], and the measurement variance.
type Reading struct {
	Value      Value
	Confidence float64
	Variance   float64
}

// Fail marks the reading as a hard sensor fault. The AND aggregation treats
// a failed reading as an immediate zero-confidence short circuit.
func (r *Reading) Fail() {
	r.Value = False
	r.Confidence = 0
}

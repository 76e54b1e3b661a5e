package ternary

// negligibleConfidence is the cutoff below which the running product is
// returned without visiting further readings. The early exit changes
// operation count only; the result and all downstream behavior are
// numerically equivalent within this tolerance.
const negligibleConfidence = 0.01

// AggregateAND reduces an ordered sequence of readings to a single
// confidence in [0, 1] with a short-circuiting multiplicative AND: any
// False-valued reading yields exactly 0, otherwise confidences multiply.
func AggregateAND(readings []Reading) float64 {
	if len(readings) == 0 {
		return 0
	}

	confidence := 1.0
	for i := range readings {
		if readings[i].Value == False {
			return 0
		}
		confidence *= readings[i].Confidence
		if confidence < negligibleConfidence {
			return confidence
		}
	}

	return confidence
}

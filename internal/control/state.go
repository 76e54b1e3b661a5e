package control

import (
	"math"

	"github.com/ossian-dev/pendguard/internal/ternary"
)

const (
	// avgSmoothing is the exponential smoothing factor for the running
	// average confidence.
	avgSmoothing = 0.95

	// eventTolerance is the band within which saturation and rate-limit
	// events are counted.
	eventTolerance = 0.01
)

// State tracks the control loop across iterations: current and previous
// output (for rate limiting), the latest and smoothed aggregated
// confidence, and monotonically increasing event counters.
type State struct {
	Output        float64
	PrevOutput    float64
	Confidence    float64
	AvgConfidence float64
	Iteration     int

	SaturationCount int
	RateLimitCount  int
}

func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset clears outputs, history, and statistics. Confidence starts at full
// trust so the first mode decision does not see a spurious failure.
func (s *State) Reset() {
	*s = State{Confidence: 1.0, AvgConfidence: 1.0}
}

// Rebase resets the rate-limiter reference to the given output, leaving
// confidence and counters untouched. Needed when the delivered torque has
// diverged from the recorded output, as it does while EMERGENCY forces zero.
func (s *State) Rebase(output float64) {
	s.PrevOutput = output
	s.Output = output
}

// Step runs one control iteration: aggregate the sensor confidences, map
// through the active mode's law, rate limit against the previous step's
// limited output, and update counters. Returns the limited output.
func (s *State) Step(readings []ternary.Reading, m Map) float64 {
	s.Confidence = ternary.AggregateAND(readings)

	raw := m.Output(s.Confidence)

	// Rate limit against the previous limited output so that
	// |output(t) - output(t-1)| <= RateLimit holds for every step pair.
	limited := RateLimited(raw, s.Output, m.RateLimit)

	if math.Abs(raw-m.UMin) < eventTolerance || math.Abs(raw-m.UMax) < eventTolerance {
		s.SaturationCount++
	}
	if math.Abs(limited-raw) > eventTolerance {
		s.RateLimitCount++
	}

	s.AvgConfidence = avgSmoothing*s.AvgConfidence + (1-avgSmoothing)*s.Confidence

	s.PrevOutput = s.Output
	s.Output = limited
	s.Iteration++

	return limited
}

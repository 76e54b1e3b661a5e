package mode

import "github.com/ossian-dev/pendguard/internal/control"

// Mode is an operating mode of the safety state machine, ordered by
// decreasing performance and increasing safety. The set is closed: all
// modes are known at compile time.
type Mode int

const (
	Nominal Mode = iota
	Degraded
	Safe
	Emergency

	NumModes = 4
)

func (m Mode) String() string {
	switch m {
	case Nominal:
		return "NOMINAL"
	case Degraded:
		return "DEGRADED"
	case Safe:
		return "SAFE"
	case Emergency:
		return "EMERGENCY"
	default:
		return "UNKNOWN"
	}
}

// Parse maps a mode name back to its value, for reading stored runs.
func Parse(s string) (Mode, bool) {
	for m := Nominal; m <= Emergency; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return Nominal, false
}

// Config holds one mode's entry threshold, hysteresis band, minimum dwell
// time, and the control-law parameters active while the mode holds.
// Populated once at initialization, immutable afterwards.
type Config struct {
	Threshold  float64
	Hysteresis float64
	DwellTime  float64
	Control    control.Map
}

// DefaultConfigs returns the stock mode table. The thresholds are
// empirically chosen defaults, not validated control-theoretic constants.
func DefaultConfigs() [NumModes]Config {
	return [NumModes]Config{
		Nominal: {
			Threshold:  0.70,
			Hysteresis: 0.05,
			DwellTime:  0.5,
			Control: control.Map{
				ConfidenceLow:  0.6,
				ConfidenceHigh: 0.9,
				UMin:           -10.0,
				UNominal:       0.0,
				UMax:           10.0,
				GainIncrease:   2.0,
				GainDecrease:   1.0,
				RateLimit:      5.0,
			},
		},
		Degraded: {
			Threshold:  0.40,
			Hysteresis: 0.05,
			DwellTime:  0.3,
			Control: control.Map{
				ConfidenceLow:  0.3,
				ConfidenceHigh: 0.8,
				UMin:           -5.0,
				UNominal:       0.0,
				UMax:           5.0,
				GainIncrease:   1.5,
				GainDecrease:   1.2,
				RateLimit:      2.0,
			},
		},
		Safe: {
			Threshold:  0.10,
			Hysteresis: 0.05,
			DwellTime:  2.0,
			Control: control.Map{
				ConfidenceLow:  0.05,
				ConfidenceHigh: 0.5,
				UMin:           -1.0,
				UNominal:       0.0,
				UMax:           1.0,
				GainIncrease:   1.0,
				GainDecrease:   1.0,
				RateLimit:      0.5,
			},
		},
		Emergency: {},
	}
}

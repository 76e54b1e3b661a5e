package scenario_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/ossian-dev/pendguard/internal/config"
	"github.com/ossian-dev/pendguard/internal/metrics"
	"github.com/ossian-dev/pendguard/internal/mode"
	"github.com/ossian-dev/pendguard/internal/physics"
	"github.com/ossian-dev/pendguard/internal/scenario"
)

// Steady-state fused confidence with all five sensors healthy inside the
// controllable region: 0.90 * 0.90 * 0.85 * 0.85 * 0.80.
const healthyConfidence = 0.46818

// emergencyLatch returns the first step at which the trace entered
// EMERGENCY, failing the test if it never did.
func emergencyLatch(result *scenario.Result) int {
	GinkgoHelper()
	for i, m := range result.Modes {
		if m == mode.Emergency {
			return i
		}
	}
	Fail("trace never entered EMERGENCY")
	return -1
}

func runPreset(name string) *scenario.Result {
	GinkgoHelper()

	cfg := config.GetPreset(name)
	Expect(cfg).NotTo(BeNil())

	runner, err := scenario.NewRunner(cfg, zerolog.Nop())
	Expect(err).NotTo(HaveOccurred())

	result, err := runner.Run(context.Background())
	Expect(err).NotTo(HaveOccurred())
	return result
}

var _ = Describe("small perturbation", func() {
	var result *scenario.Result

	BeforeEach(func() {
		result = runPreset("small")
	})

	It("completes the full duration", func() {
		Expect(result.Steps()).To(Equal(1000))
	})

	It("opens at the healthy fused confidence", func() {
		Expect(result.Confidences[0]).To(BeNumerically("~", healthyConfidence, 1e-4))
	})

	It("escalates NOMINAL, DEGRADED, then EMERGENCY as the transient grows", func() {
		// The healthy confidence 0.468 sits below the NOMINAL band, so the
		// law holds a constant open-loop torque through the NOMINAL dwell.
		// That pumps the transient across the controllable boundary near
		// t=1s, the derated suite collapses below the emergency floor, and
		// EMERGENCY latches terminally.
		Expect(result.Modes[0]).To(Equal(mode.Nominal))
		Expect(result.FinalMode).To(Equal(mode.Emergency))
		Expect(result.Transitions).To(Equal(2))
		Expect(result.Stats.UncontrollableSteps).To(BeNumerically(">", 0))
	})

	It("collapses confidence below the emergency floor while uncontrollable", func() {
		lowest := result.Confidences[0]
		for _, c := range result.Confidences {
			if c < lowest {
				lowest = c
			}
		}
		Expect(lowest).To(BeNumerically("<", 0.05))
		Expect(lowest).To(BeNumerically(">", 0))
	})

	It("holds exactly zero torque from the EMERGENCY latch onward", func() {
		latch := emergencyLatch(result)
		Expect(latch).To(BeNumerically(">", 0))
		for i := latch; i < result.Steps(); i++ {
			Expect(result.Modes[i]).To(Equal(mode.Emergency))
			Expect(result.Torques[i]).To(BeZero())
		}
	})

	It("respects the actuator limit and rate limit", func() {
		for i, torque := range result.Torques {
			Expect(math.Abs(torque)).To(BeNumerically("<=", 10.0))
			if i > 0 {
				delta := math.Abs(torque - result.Torques[i-1])
				Expect(delta).To(BeNumerically("<=", 5.0+1e-9))
			}
		}
	})

	It("keeps both joint angles wrapped", func() {
		for _, x := range result.States {
			Expect(x[0]).To(And(
				BeNumerically(">", -math.Pi),
				BeNumerically("<=", math.Pi),
			))
			Expect(x[2]).To(And(
				BeNumerically(">", -math.Pi),
				BeNumerically("<=", math.Pi),
			))
		}
	})
})

var _ = Describe("sensor failure", func() {
	var result *scenario.Result

	BeforeEach(func() {
		result = runPreset("failure")
	})

	It("ends in EMERGENCY", func() {
		Expect(result.FinalMode).To(Equal(mode.Emergency))
	})

	It("destabilizes before the fault even fires", func() {
		// Same open-loop pumping as the small-perturbation case, from a
		// larger start: the loop opens healthy in NOMINAL and has already
		// latched EMERGENCY by the time the gyro drops at t=2.5s.
		Expect(result.Confidences[0]).To(BeNumerically("~", healthyConfidence, 1e-4))
		Expect(result.Modes[0]).To(Equal(mode.Nominal))
		Expect(emergencyLatch(result)).To(BeNumerically("<", 250))
	})

	It("aggregates the failed sensor to zero confidence", func() {
		for i := 250; i < result.Steps(); i++ {
			Expect(result.Confidences[i]).To(BeZero())
		}
	})

	It("commands exactly zero torque from the EMERGENCY latch onward", func() {
		for i := emergencyLatch(result); i < result.Steps(); i++ {
			Expect(result.Modes[i]).To(Equal(mode.Emergency))
			Expect(result.Torques[i]).To(BeZero())
		}
	})
})

var _ = Describe("large excursion", func() {
	It("latches EMERGENCY from the uncontrollable start", func() {
		result := runPreset("excursion")

		// theta1=0.5 sits on the controllable boundary, so the suite
		// derates immediately and confidence collapses below the floor.
		Expect(result.FinalMode).To(Equal(mode.Emergency))
		Expect(result.Steps()).To(Equal(1500))
	})
})

var _ = Describe("high velocity", func() {
	It("latches EMERGENCY and dissipates the initial spin", func() {
		result := runPreset("velocity")

		Expect(result.FinalMode).To(Equal(mode.Emergency))

		// With torque cut, joint damping must bleed mechanical energy.
		cfg := config.GetPreset("velocity")
		dyn, err := physics.NewDoublePendulum(cfg.Params())
		Expect(err).NotTo(HaveOccurred())

		first := dyn.Energy(result.States[0])
		last := dyn.Energy(result.States[result.Steps()-1])
		Expect(last).To(BeNumerically("<", first))
	})
})

var _ = Describe("metrics", func() {
	It("reports the controllable fraction for the small scenario", func() {
		cfg := config.GetPreset("small")
		runner, err := scenario.NewRunner(cfg, zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())

		dyn, err := physics.NewDoublePendulum(cfg.Params())
		Expect(err).NotTo(HaveOccurred())
		ctrb := metrics.NewControllability(dyn.Controllable)
		effort := metrics.NewControlEffort()
		runner.AddMetric(ctrb)
		runner.AddMetric(effort)

		result, err := runner.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		// The transient spends a short uncontrollable stretch near t=1s.
		Expect(result.Metrics["controllability"]).To(And(
			BeNumerically(">", 0.9),
			BeNumerically("<", 1.0),
		))
		Expect(result.Metrics["control_effort"]).To(BeNumerically(">", 0))
	})
})

var _ = Describe("sweep", func() {
	It("runs all presets concurrently", func() {
		results, err := scenario.Sweep(context.Background(), config.ListPresets(), zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		Expect(results["failure"].FinalMode).To(Equal(mode.Emergency))
		Expect(results["small"].FinalMode).To(Equal(mode.Emergency))
	})

	It("rejects unknown preset names", func() {
		_, err := scenario.Sweep(context.Background(), []string{"nope"}, zerolog.Nop())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("step count", func() {
	It("rounds the duration/dt ratio instead of truncating", func() {
		cfg := config.DefaultConfig()
		cfg.Duration = 0.3
		cfg.Dt = 0.1

		runner, err := scenario.NewRunner(cfg, zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())

		result, err := runner.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		// 0.3/0.1 is fractionally below 3 in floats; truncation would
		// silently drop the final step.
		Expect(result.Steps()).To(Equal(3))
	})
})

var _ = Describe("cancellation", func() {
	It("stops promptly when the context is cancelled", func() {
		cfg := config.GetPreset("small")
		runner, err := scenario.NewRunner(cfg, zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := runner.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(result.Steps()).To(BeZero())
	})
})

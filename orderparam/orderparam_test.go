package orderparam

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/orbitsync/timing"
)

var _ = Describe("Compute", func() {
	It("should be 1 for identical phases", func() {
		Expect(Compute([]float64{1.3, 1.3, 1.3, 1.3})).To(
			BeNumerically("~", 1, 1e-9))
	})

	It("should be 1 for phases equal modulo 2π", func() {
		Expect(Compute([]float64{0.5, 0.5 + 2*math.Pi, 0.5 - 4*math.Pi})).To(
			BeNumerically("~", 1, 1e-9))
	})

	It("should vanish for 3-fold symmetric phases", func() {
		Expect(Compute([]float64{0, 2 * math.Pi / 3, 4 * math.Pi / 3})).To(
			BeNumerically("~", 0, 1e-9))
	})

	It("should be 0 for opposite phases", func() {
		Expect(Compute([]float64{0, math.Pi})).To(BeNumerically("~", 0, 1e-9))
	})

	It("should stay within [0, 1]", func() {
		rng := rand.New(rand.NewSource(7))

		for i := 0; i < 200; i++ {
			phases := make([]float64, 1+rng.Intn(12))
			for j := range phases {
				phases[j] = (rng.Float64() - 0.5) * 40
			}

			r, err := Compute(phases)
			Expect(err).NotTo(HaveOccurred())
			Expect(r).To(BeNumerically(">=", 0))
			Expect(r).To(BeNumerically("<=", 1))
		}
	})

	It("should fail on an empty set", func() {
		_, err := Compute(nil)
		Expect(err).To(MatchError(ErrEmptyOscillatorSet))
	})

	It("should skip non-finite phases", func() {
		Expect(Compute([]float64{0.2, math.NaN(), 0.2})).To(
			BeNumerically("~", 1, 1e-9))

		_, err := Compute([]float64{math.Inf(1)})
		Expect(err).To(MatchError(ErrEmptyOscillatorSet))
	})
})

var _ = Describe("ComputeAt", func() {
	var oscillators []timing.Oscillator

	BeforeEach(func() {
		oscillators = []timing.Oscillator{
			timing.NewOscillator(1000),
			timing.NewOscillator(2000),
			timing.NewOscillator(3000),
		}
	})

	It("should be synchronized at the start", func() {
		Expect(ComputeAt(oscillators, 0)).To(BeNumerically("~", 1, 1e-9))
	})

	It("should be synchronized again at the recurrence", func() {
		Expect(ComputeAt(oscillators, 6000)).To(BeNumerically("~", 1, 1e-9))
	})

	It("should be below 1 in between", func() {
		Expect(ComputeAt(oscillators, 1500)).To(BeNumerically("<", 0.9))
	})

	It("should skip oscillators with invalid periods", func() {
		oscillators = append(oscillators, timing.NewOscillator(-1))
		Expect(Angles(oscillators, 0)).To(HaveLen(3))
		Expect(ComputeAt(oscillators, 0)).To(BeNumerically("~", 1, 1e-9))
	})

	It("should fail when no oscillator is valid", func() {
		_, err := ComputeAt([]timing.Oscillator{timing.NewOscillator(0)}, 0)
		Expect(err).To(MatchError(ErrEmptyOscillatorSet))
	})
})

var _ = Describe("IsFullSync", func() {
	It("should accept values close to 1", func() {
		Expect(IsFullSync(0.9995)).To(BeTrue())
		Expect(IsFullSync(0.998)).To(BeFalse())
	})
})

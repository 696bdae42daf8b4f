package timing

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Phase", func() {
	It("should start at zero", func() {
		Expect(Phase(0, 1000)).To(BeNumerically("==", 0))
	})

	It("should reach half a revolution at half the period", func() {
		Expect(Phase(500, 1000)).To(BeNumerically("~", math.Pi, 1e-12))
	})

	It("should wrap after a full period", func() {
		Expect(Phase(1000, 1000)).To(BeNumerically("==", 0))
		Expect(Phase(1250, 1000)).To(BeNumerically("~", math.Pi/2, 1e-12))
	})

	It("should keep precision for large elapsed times", func() {
		angle, err := Phase(1e12+250, 1000)
		Expect(err).NotTo(HaveOccurred())
		Expect(angle).To(BeNumerically("~", math.Pi/2, 1e-3))
	})

	It("should stay inside [0, 2π)", func() {
		for t := 0.0; t < 5000; t += 7.3 {
			angle, err := Phase(VTimeInMs(t), 733)
			Expect(err).NotTo(HaveOccurred())
			Expect(angle).To(BeNumerically(">=", 0))
			Expect(angle).To(BeNumerically("<", TwoPi))
		}
	})

	It("should reject non-positive periods", func() {
		_, err := Phase(10, 0)
		Expect(err).To(MatchError(ErrInvalidPeriod))

		_, err = Phase(10, -5)
		Expect(err).To(MatchError(ErrInvalidPeriod))
	})

	It("should reject non-finite periods", func() {
		_, err := Phase(10, Period(math.NaN()))
		Expect(err).To(MatchError(ErrInvalidPeriod))

		_, err = Phase(10, Period(math.Inf(1)))
		Expect(err).To(MatchError(ErrInvalidPeriod))
	})

	It("should reject negative elapsed time", func() {
		_, err := Phase(-1, 1000)
		Expect(err).To(MatchError(ErrInvalidTime))
	})
})

var _ = Describe("NormalizeAngle", func() {
	It("should map negative angles into range", func() {
		Expect(NormalizeAngle(-math.Pi / 2)).To(
			BeNumerically("~", 3*math.Pi/2, 1e-12))
	})

	It("should map angles above 2π into range", func() {
		Expect(NormalizeAngle(5 * math.Pi)).To(BeNumerically("~", math.Pi, 1e-12))
	})
})

var _ = Describe("Period", func() {
	It("should convert to frequency", func() {
		Expect(Period(500).Frequency()).To(BeNumerically("==", 2))
	})
})

var _ = Describe("Oscillator", func() {
	var osc Oscillator

	BeforeEach(func() {
		osc = NewOscillator(1000)
	})

	It("should start at the top", func() {
		angle, err := osc.Angle(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.Sin(angle)).To(BeNumerically("~", -1, 1e-12))
	})

	It("should move a quarter turn in a quarter period", func() {
		angle, err := osc.Angle(250)
		Expect(err).NotTo(HaveOccurred())
		Expect(angle).To(BeNumerically("~", 0, 1e-12))
	})

	It("should count revolutions", func() {
		Expect(osc.Revolutions(3999)).To(Equal(uint64(3)))
	})

	It("should tell the time to the next top", func() {
		Expect(TimeToNextTop(250, osc)).To(BeNumerically("~", 750, 1e-9))
		Expect(TimeToNextTop(0, osc)).To(BeNumerically("~", 0, 1e-9))
	})

	It("should honour a custom reference phase", func() {
		osc.ReferencePhase = 0
		Expect(TimeToNextTop(0, osc)).To(BeNumerically("~", 750, 1e-9))
	})

	It("should report invalid periods", func() {
		osc.Period = 0
		_, err := osc.Angle(10)
		Expect(err).To(MatchError(ErrInvalidPeriod))
	})
})

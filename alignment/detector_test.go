package alignment

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/orbitsync/hooking"
	"github.com/sarchlab/orbitsync/timing"
)

var _ = Describe("Detector", func() {
	var (
		d   *Detector
		top float64
	)

	BeforeEach(func() {
		d = NewDetector(2, DefaultEpsilon)
		top = 3 * math.Pi / 2
	})

	It("should start all oscillators away", func() {
		Expect(d.NumOscillators()).To(Equal(2))
		Expect(d.State(0)).To(Equal(StateAway))
		Expect(d.State(1)).To(Equal(StateAway))
	})

	It("should fall back to the default epsilon", func() {
		Expect(NewDetector(1, 0).Epsilon()).To(Equal(DefaultEpsilon))
	})

	It("should fire once when entering the top window", func() {
		evt, ok := d.Update(1, top, 42)
		Expect(ok).To(BeTrue())
		Expect(evt).To(Equal(Event{OscillatorIndex: 1, Time: 42}))
		Expect(d.State(1)).To(Equal(StateAtTop))

		_, ok = d.Update(1, top+0.01, 58)
		Expect(ok).To(BeFalse())
		Expect(d.State(1)).To(Equal(StateAtTop))
	})

	It("should re-arm silently when leaving the top", func() {
		d.Update(0, top, 0)

		_, ok := d.Update(0, 0, 16)
		Expect(ok).To(BeFalse())
		Expect(d.State(0)).To(Equal(StateAway))

		_, ok = d.Update(0, top, 32)
		Expect(ok).To(BeTrue())
	})

	It("should keep oscillators independent", func() {
		_, ok := d.Update(0, top, 0)
		Expect(ok).To(BeTrue())

		_, ok = d.Update(1, top, 0)
		Expect(ok).To(BeTrue())
	})

	It("should fire exactly twice for two crossings", func() {
		osc := timing.NewOscillator(1000)
		count := 0

		for t := 100.0; t <= 2100; t += 16 {
			angle, err := osc.Angle(timing.VTimeInMs(t))
			Expect(err).NotTo(HaveOccurred())

			if _, ok := d.Update(0, angle, timing.VTimeInMs(t)); ok {
				count++
			}
		}

		Expect(count).To(Equal(2))
	})

	It("should grow the state table for new indices", func() {
		_, ok := d.Update(4, top, 0)
		Expect(ok).To(BeTrue())
		Expect(d.NumOscillators()).To(Equal(5))
	})

	It("should reset every state on resize", func() {
		d.Update(0, top, 0)
		d.Resize(3)

		Expect(d.NumOscillators()).To(Equal(3))
		Expect(d.State(0)).To(Equal(StateAway))
	})

	It("should re-arm on reset", func() {
		d.Update(0, top, 0)
		d.Reset()

		_, ok := d.Update(0, top, 16)
		Expect(ok).To(BeTrue())
	})

	It("should re-arm a single oscillator", func() {
		d.Update(0, top, 0)
		d.Update(1, top, 0)
		d.Rearm(1)
		d.Rearm(7)

		Expect(d.State(0)).To(Equal(StateAtTop))
		Expect(d.State(1)).To(Equal(StateAway))

		_, ok := d.Update(1, top, 16)
		Expect(ok).To(BeTrue())
	})

	It("should invoke hooks on events", func() {
		var got []Event
		d.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosTopReached))
			got = append(got, ctx.Item.(Event))
		}))

		d.Update(0, top, 5)
		d.Update(0, top, 21)

		Expect(got).To(Equal([]Event{{OscillatorIndex: 0, Time: 5}}))
	})

	It("should panic on negative indices", func() {
		Expect(func() { d.Update(-1, top, 0) }).To(Panic())
	})

	It("should name states", func() {
		Expect(StateAway.String()).To(Equal("AWAY"))
		Expect(StateAtTop.String()).To(Equal("AT_TOP"))
	})
})

package orderparam

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/orbitsync/hooking"
)

var _ = Describe("Tracker", func() {
	var tracker *Tracker

	BeforeEach(func() {
		tracker = NewTracker()
	})

	It("should use the default capacities", func() {
		Expect(tracker.LongHistory().Capacity()).To(Equal(DefaultLongHistory))
		Expect(tracker.ShortHistory().Capacity()).To(Equal(ShortHistory))
	})

	It("should append every update to both histories", func() {
		r, err := tracker.Update([]float64{0, 0}, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(r).To(BeNumerically("~", 1, 1e-9))

		_, err = tracker.Update([]float64{0, 3.14159265358979}, 16)
		Expect(err).NotTo(HaveOccurred())

		Expect(tracker.LongHistory().Size()).To(Equal(2))
		Expect(tracker.ShortHistory().Size()).To(Equal(2))
	})

	It("should not record failed updates", func() {
		_, err := tracker.Update(nil, 0)
		Expect(err).To(MatchError(ErrEmptyOscillatorSet))
		Expect(tracker.LongHistory().Size()).To(Equal(0))
	})

	It("should evict from the short history first", func() {
		for i := 0; i < ShortHistory+10; i++ {
			_, err := tracker.Update([]float64{0}, 0)
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(tracker.ShortHistory().Size()).To(Equal(ShortHistory))
		Expect(tracker.LongHistory().Size()).To(Equal(ShortHistory + 10))
	})

	It("should track the frame delta", func() {
		_, ok := tracker.FrameDelta()
		Expect(ok).To(BeFalse())

		tracker.Update([]float64{0}, 100)
		tracker.Update([]float64{0}, 116)

		dt, ok := tracker.FrameDelta()
		Expect(ok).To(BeTrue())
		Expect(dt).To(BeNumerically("==", 16))
	})

	It("should size the long history from a prediction", func() {
		tracker.AdjustHistoryLength(6000, true, 16)
		Expect(tracker.LongHistory().Capacity()).To(Equal(450))
	})

	It("should fall back to the default without a prediction", func() {
		tracker.AdjustHistoryLength(6000, true, 16)
		tracker.AdjustHistoryLength(0, false, 16)

		Expect(tracker.LongHistory().Capacity()).To(Equal(DefaultLongHistory))
	})

	It("should bound very long predictions", func() {
		tracker.AdjustHistoryLength(1e30, true, 16)
		Expect(tracker.LongHistory().Capacity()).To(Equal(MaxLongHistory))
	})

	It("should trim when the long history shrinks", func() {
		for i := 0; i < 20; i++ {
			tracker.Update([]float64{float64(i)}, 0)
		}

		tracker.AdjustHistoryLength(100, true, 24)

		Expect(tracker.LongHistory().Capacity()).To(Equal(5))
		Expect(tracker.LongHistory().Size()).To(Equal(5))
	})

	It("should clear and restore defaults", func() {
		tracker.Update([]float64{0}, 0)
		tracker.AdjustHistoryLength(6000, true, 16)

		tracker.Clear()

		Expect(tracker.LongHistory().Size()).To(Equal(0))
		Expect(tracker.ShortHistory().Size()).To(Equal(0))
		Expect(tracker.LongHistory().Capacity()).To(Equal(DefaultLongHistory))
		_, ok := tracker.FrameDelta()
		Expect(ok).To(BeFalse())
	})

	It("should fire the full sync hook on the rising edge only", func() {
		var times []float64
		tracker.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosFullSync))
			times = append(times, ctx.Time)
		}))

		tracker.Update([]float64{0, 0}, 0)
		tracker.Update([]float64{0, 0}, 16)
		tracker.Update([]float64{0, 2}, 32)
		tracker.Update([]float64{1, 1}, 48)

		Expect(times).To(Equal([]float64{0, 48}))
		Expect(tracker.InSync()).To(BeTrue())
	})
})

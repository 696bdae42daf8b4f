package simulation

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/orbitsync/alignment"
	"github.com/sarchlab/orbitsync/hooking"
	"github.com/sarchlab/orbitsync/orderparam"
	"github.com/sarchlab/orbitsync/recurrence"
	"github.com/sarchlab/orbitsync/timing"
)

var _ = Describe("Builder", func() {
	It("should reject an empty oscillator set", func() {
		_, err := MakeBuilder().Build()
		Expect(err).To(MatchError(orderparam.ErrEmptyOscillatorSet))
	})

	It("should panic on a non-positive frame delta", func() {
		Expect(func() {
			_, _ = MakeBuilder().WithPeriods(1000).WithFrameDelta(0).Build()
		}).To(Panic())
	})

	It("should not share state between builders", func() {
		base := MakeBuilder().WithPeriods(1000)
		s1, err := base.WithEpsilon(0.05).Build()
		Expect(err).NotTo(HaveOccurred())
		s2, err := base.Build()
		Expect(err).NotTo(HaveOccurred())

		Expect(s1.Detector().Epsilon()).To(Equal(0.05))
		Expect(s2.Detector().Epsilon()).To(Equal(alignment.DefaultEpsilon))
		Expect(s1.ID()).NotTo(Equal(s2.ID()))
	})
})

var _ = Describe("Session", func() {
	var (
		mockCtrl *gomock.Controller
		session  *Session
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())

		var err error
		session, err = MakeBuilder().
			WithPeriods(1000, 2000, 3000).
			Build()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should predict the recurrence on build", func() {
		p := session.Prediction()
		Expect(p.Status).To(Equal(recurrence.StatusFinite))
		Expect(p.Duration).To(BeNumerically("~", 6000, 1e-6))
		Expect(session.FormattedPrediction()).To(Equal("6s 000ms"))
	})

	It("should size the long history to the recurrence", func() {
		Expect(session.Tracker().LongHistory().Capacity()).To(Equal(450))
	})

	It("should report all oscillators at the top at time zero", func() {
		frame, err := session.Advance(0)

		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Events).To(HaveLen(3))
		Expect(frame.OrderParameter).To(BeNumerically("~", 1, 1e-9))
		Expect(frame.FullSync).To(BeTrue())
	})

	It("should realign at the predicted recurrence", func() {
		var last Frame
		for t := 0; t <= 6000; t += 16 {
			frame, err := session.Advance(timing.VTimeInMs(t))
			Expect(err).NotTo(HaveOccurred())
			last = frame
		}

		Expect(float64(last.Time)).To(Equal(6000.0))
		Expect(last.OrderParameter).To(BeNumerically("~", 1, 1e-9))
		Expect(session.Tracker().LongHistory().Size()).To(Equal(376))
		Expect(session.Tracker().ShortHistory().Size()).To(Equal(376))
	})

	It("should invoke hooks on alignment events", func() {
		hook := NewMockHook(mockCtrl)
		session.AcceptHook(hook)

		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx hooking.HookCtx) {
				Expect(ctx.Pos).To(Equal(alignment.HookPosTopReached))
			}).
			Times(3)
		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx hooking.HookCtx) {
				Expect(ctx.Pos).To(Equal(orderparam.HookPosFullSync))
			})

		_, err := session.Advance(0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should skip oscillators with an invalid period", func() {
		Expect(session.SetPeriods([]float64{1000, 0, 3000})).To(Succeed())

		frame, err := session.Advance(0)

		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsNaN(frame.Angles[1])).To(BeTrue())
		Expect(frame.Events).To(HaveLen(2))
		Expect(session.Prediction().Status).To(Equal(recurrence.StatusNone))
		Expect(session.FormattedReset(0)).To(Equal(NoPredictionText))
	})

	It("should fire again for an oscillator whose period is restored", func() {
		_, err := session.Advance(0)
		Expect(err).NotTo(HaveOccurred())

		Expect(session.SetPeriods([]float64{1000, 0, 3000})).To(Succeed())
		_, err = session.Advance(16)
		Expect(err).NotTo(HaveOccurred())

		Expect(session.SetPeriods([]float64{1000, 2000, 3000})).To(Succeed())
		frame, err := session.Advance(2000)

		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Events).To(ContainElement(alignment.Event{
			OscillatorIndex: 1,
			Time:            2000,
		}))
	})

	It("should reject a negative time", func() {
		_, err := session.Advance(-1)
		Expect(err).To(MatchError(timing.ErrInvalidTime))
	})

	It("should keep the histories when periods are edited", func() {
		_, err := session.Advance(0)
		Expect(err).NotTo(HaveOccurred())

		Expect(session.SetPeriods([]float64{1000, 2000, 4000})).To(Succeed())

		Expect(session.Tracker().ShortHistory().Size()).To(Equal(1))
		Expect(session.Prediction().Duration).
			To(BeNumerically("~", 4000, 1e-6))
	})

	It("should clear the histories when the oscillator count changes", func() {
		_, err := session.Advance(0)
		Expect(err).NotTo(HaveOccurred())

		Expect(session.SetPeriods([]float64{1000, 2000})).To(Succeed())

		Expect(session.Tracker().ShortHistory().Size()).To(Equal(0))
		Expect(session.Detector().NumOscillators()).To(Equal(2))
		_, ok := session.LastFrame()
		Expect(ok).To(BeFalse())
	})

	It("should reject reconfiguring to no oscillators", func() {
		Expect(session.Reconfigure(nil)).
			To(MatchError(orderparam.ErrEmptyOscillatorSet))
	})

	It("should fire alignment events again after reset", func() {
		_, err := session.Advance(0)
		Expect(err).NotTo(HaveOccurred())

		session.Reset()
		frame, err := session.Advance(0)

		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Events).To(HaveLen(3))
	})

	It("should count down to the next reset", func() {
		Expect(session.NextReset(1500)).To(BeNumerically("~", 4500, 1e-9))
		Expect(session.FormattedReset(1500)).To(Equal("4.50s"))
	})
})

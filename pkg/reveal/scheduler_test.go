package reveal_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/pkg/reveal"
)

var _ = Describe("Timer", func() {
	var timer *reveal.Timer

	BeforeEach(func() {
		timer = reveal.NewTimer()
	})

	AfterEach(func() {
		timer.Close()
	})

	It("delivers the scheduled tick", func() {
		timer.Schedule(7, time.Millisecond)

		var tick reveal.Tick
		Eventually(timer.C).Should(Receive(&tick))
		Expect(tick.ID).To(Equal(reveal.TickID(7)))
		Expect(tick.At).NotTo(BeZero())
	})

	It("replaces a tick that has not fired", func() {
		timer.Schedule(1, time.Hour)
		timer.Schedule(2, time.Millisecond)

		var tick reveal.Tick
		Eventually(timer.C).Should(Receive(&tick))
		Expect(tick.ID).To(Equal(reveal.TickID(2)))
		Consistently(timer.C, 50*time.Millisecond).ShouldNot(Receive())
	})

	It("drives a controller to completion", func() {
		ctrl := reveal.New(reveal.Config{BaseRate: 2000, FrameInterval: time.Millisecond}, timer, nil)
		ctrl.PushText("Hello, world")
		done := ctrl.StartAnimation()

		for !done.Resolved() {
			var tick reveal.Tick
			Eventually(timer.C).Should(Receive(&tick))
			ctrl.Tick(tick.ID, tick.At)
		}
		Expect(ctrl.RevealedText()).To(Equal("Hello, world"))
	})

	It("ignores schedules after Close", func() {
		timer.Close()
		timer.Schedule(1, time.Millisecond)
		Consistently(timer.C, 20*time.Millisecond).ShouldNot(Receive())
	})
})

package stopwatch

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FSM", func() {
	DescribeTable("next state",
		func(from ControlState, in Inputs, want ControlState) {
			f := FSM{State: from}
			Expect(f.Next(in)).To(Equal(want))
		},
		Entry("idle holds", Idle, Inputs{}, Idle),
		Entry("idle starts", Idle, Inputs{Start: true}, Running),
		Entry("idle ignores stop", Idle, Inputs{Stop: true}, Idle),
		Entry("running holds", Running, Inputs{}, Running),
		Entry("running ignores start", Running, Inputs{Start: true}, Running),
		Entry("running stops", Running, Inputs{Stop: true}, Paused),
		Entry("paused holds", Paused, Inputs{}, Paused),
		Entry("paused resumes", Paused, Inputs{Start: true}, Running),
		Entry("paused ignores stop", Paused, Inputs{Stop: true}, Paused),
		Entry("local reset from running", Running, Inputs{LocalReset: true}, Idle),
		Entry("local reset from paused", Paused, Inputs{LocalReset: true}, Idle),
		Entry("local reset beats start", Idle,
			Inputs{LocalReset: true, Start: true}, Idle),
		Entry("master reset beats everything", Paused,
			Inputs{MasterResetActive: true, Start: true, Stop: true, LocalReset: true},
			Idle),
		Entry("start and stop resume a paused machine", Paused,
			Inputs{Start: true, Stop: true}, Running),
		Entry("start and stop pause a running machine", Running,
			Inputs{Start: true, Stop: true}, Paused),
	)

	It("should enable only while running", func() {
		Expect(FSM{State: Idle}.Enable()).To(BeFalse())
		Expect(FSM{State: Running}.Enable()).To(BeTrue())
		Expect(FSM{State: Paused}.Enable()).To(BeFalse())
	})

	It("should only change on commit", func() {
		f := FSM{State: Idle}

		next := f.Next(Inputs{Start: true})
		Expect(f.State).To(Equal(Idle))

		f.Commit(next)
		Expect(f.State).To(Equal(Running))
	})
})

var _ = Describe("ControlState", func() {
	It("should encode status codes", func() {
		Expect(Idle.Code()).To(Equal(StatusIdle))
		Expect(Running.Code()).To(Equal(StatusRunning))
		Expect(Paused.Code()).To(Equal(StatusPaused))
		Expect(ControlState(7).Code()).To(Equal(StatusUnknown))
	})

	It("should print", func() {
		Expect(Running.String()).To(Equal("Running"))
		Expect(ControlState(9).String()).To(Equal("Invalid"))
	})
})

package stopwatch

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NasaHari/bitsilicon-dd-assignments/instrumentation/hooking"
)

func tick(d *Device) Edge {
	edge := d.RisingEdge()
	d.FallingEdge()

	return edge
}

func ticks(d *Device, n int) {
	for i := 0; i < n; i++ {
		tick(d)
	}
}

func pulse(d *Device, set func(bool)) Edge {
	set(true)
	edge := tick(d)
	set(false)

	return edge
}

func runningDevice() *Device {
	d := MakeBuilder().Build("SW")
	pulse(d, d.SetStart)
	Expect(d.State()).To(Equal(Running))

	return d
}

var _ = Describe("Device", func() {
	var d *Device

	BeforeEach(func() {
		d = MakeBuilder().Build("SW")
	})

	It("should power up idle and cleared", func() {
		Expect(d.Name()).To(Equal("SW"))
		Expect(d.State()).To(Equal(Idle))
		Expect(d.Outputs()).To(Equal(Outputs{Minutes: 0, Seconds: 0, Status: StatusIdle}))
		Expect(d.Inputs()).To(Equal(Inputs{}))
	})

	It("should stay idle without input", func() {
		ticks(d, 10)

		Expect(d.State()).To(Equal(Idle))
		Expect(d.Seconds()).To(Equal(uint8(0)))
	})

	Context("master reset", func() {
		It("should clear after being held and released", func() {
			d = runningDevice()
			ticks(d, 70)

			d.SetMasterReset(true)
			ticks(d, 2)
			d.SetMasterReset(false)
			ticks(d, 2)

			Expect(d.State()).To(Equal(Idle))
			Expect(d.Seconds()).To(Equal(uint8(0)))
			Expect(d.Minutes()).To(Equal(uint8(0)))
		})

		It("should act before the edge when asynchronous", func() {
			d = runningDevice()
			ticks(d, 5)

			d.SetMasterReset(true)

			Expect(d.State()).To(Equal(Idle))
			Expect(d.Seconds()).To(Equal(uint8(0)))
		})

		It("should wait for the edge when synchronous", func() {
			d = MakeBuilder().WithAsyncMasterReset(false).Build("SW")
			pulse(d, d.SetStart)
			ticks(d, 5)

			d.SetMasterReset(true)
			Expect(d.State()).To(Equal(Running))
			Expect(d.Seconds()).To(Equal(uint8(5)))

			edge := tick(d)
			Expect(edge.Signals.Clear).To(BeTrue())
			Expect(edge.Signals.Overflow).To(BeFalse())
			Expect(d.State()).To(Equal(Idle))
			Expect(d.Seconds()).To(Equal(uint8(0)))
		})

		It("should hold the device cleared while active", func() {
			d.SetInputs(Inputs{MasterResetActive: true, Start: true})
			ticks(d, 3)

			Expect(d.State()).To(Equal(Idle))
			Expect(d.Eval().NextState).To(Equal(Idle))
		})
	})

	Context("start", func() {
		It("should run and enable on the tick after a one-tick pulse", func() {
			edge := pulse(d, d.SetStart)
			Expect(edge.Signals.Enable).To(BeFalse())
			Expect(edge.Signals.NextState).To(Equal(Running))
			Expect(d.Seconds()).To(Equal(uint8(0)))

			edge = tick(d)
			Expect(edge.Signals.Enable).To(BeTrue())
			Expect(d.State()).To(Equal(Running))
			Expect(d.Seconds()).To(Equal(uint8(1)))
		})

		It("should not re-trigger when held", func() {
			d.SetStart(true)
			ticks(d, 3)

			Expect(d.State()).To(Equal(Running))
			Expect(d.Seconds()).To(Equal(uint8(2)))
		})
	})

	Context("running", func() {
		BeforeEach(func() {
			d = runningDevice()
		})

		It("should count one second per tick", func() {
			for i := 1; i <= 59; i++ {
				edge := tick(d)
				Expect(edge.Signals.Overflow).To(BeFalse())
				Expect(d.Seconds()).To(Equal(uint8(i)))
			}
		})

		It("should carry into minutes exactly on the wrapping tick", func() {
			ticks(d, 59)
			Expect(d.Seconds()).To(Equal(uint8(59)))
			Expect(d.Eval().Overflow).To(BeTrue())

			edge := tick(d)

			Expect(edge.Signals.Overflow).To(BeTrue())
			Expect(d.Seconds()).To(Equal(uint8(0)))
			Expect(d.Minutes()).To(Equal(uint8(1)))

			edge = tick(d)
			Expect(edge.Signals.Overflow).To(BeFalse())
			Expect(d.Minutes()).To(Equal(uint8(1)))
		})

		It("should wrap minutes from 255 to 0", func() {
			ticks(d, MinutesModulus*SecondsModulus-1)
			Expect(d.Minutes()).To(Equal(uint8(255)))
			Expect(d.Seconds()).To(Equal(uint8(59)))

			tick(d)

			Expect(d.Minutes()).To(Equal(uint8(0)))
			Expect(d.Seconds()).To(Equal(uint8(0)))
		})

		It("should pause on stop and freeze", func() {
			ticks(d, 9)

			edge := pulse(d, d.SetStop)
			Expect(edge.Signals.Enable).To(BeTrue())
			Expect(d.State()).To(Equal(Paused))
			Expect(d.Seconds()).To(Equal(uint8(10)))

			ticks(d, 100)
			Expect(d.Seconds()).To(Equal(uint8(10)))
			Expect(d.Minutes()).To(Equal(uint8(0)))
			Expect(d.Status()).To(Equal(StatusPaused))
		})

		It("should resume from pause", func() {
			pulse(d, d.SetStop)
			pulse(d, d.SetStart)
			Expect(d.State()).To(Equal(Running))

			before := d.Seconds()
			ticks(d, 4)
			Expect(d.Seconds()).To(Equal(before + 4))
		})

		It("should clear on local reset", func() {
			ticks(d, 75)
			Expect(d.Minutes()).To(Equal(uint8(1)))

			edge := pulse(d, d.SetLocalReset)

			Expect(edge.Signals.Clear).To(BeTrue())
			Expect(d.State()).To(Equal(Idle))
			Expect(d.Outputs()).To(Equal(Outputs{}))
		})

		It("should not carry when clearing on 59", func() {
			ticks(d, 59)

			edge := pulse(d, d.SetLocalReset)

			Expect(edge.Signals.Overflow).To(BeFalse())
			Expect(d.Minutes()).To(Equal(uint8(0)))
		})
	})

	Context("hooks", func() {
		It("should report edges in order", func() {
			var positions []string
			var edges []Edge
			hook := hooking.HookFunc(func(ctx hooking.HookCtx) {
				positions = append(positions, ctx.Pos.Name)
				if e, ok := ctx.Item.(Edge); ok {
					edges = append(edges, e)
				}
			})
			d = MakeBuilder().WithHook(hook).Build("SW")

			d.SetStart(true)
			tick(d)

			Expect(positions).To(Equal([]string{"BeforeEdge", "AfterEdge", "FallingEdge"}))
			Expect(edges[0].State).To(Equal(Idle))
			Expect(edges[1].Outputs.Status).To(Equal(StatusRunning))
		})
	})

	It("should flatten an edge into a snapshot", func() {
		d = runningDevice()
		ticks(d, 59)

		snap := tick(d).Snapshot(61)

		Expect(snap).To(Equal(Snapshot{
			Cycle:     61,
			Enable:    true,
			Overflow:  true,
			State:     Running,
			NextState: Running,
			Minutes:   1,
			Seconds:   0,
			Status:    StatusRunning,
		}))
	})

	It("should keep its invariants under arbitrary stimulus", func() {
		rng := rand.New(rand.NewSource(1))
		d.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos != HookPosBeforeEdge {
				return
			}

			e := ctx.Item.(Edge)
			Expect(e.Signals.Enable).To(Equal(e.State == Running))
			Expect(e.Signals.Clear).To(Equal(
				e.Inputs.MasterResetActive || e.Inputs.LocalReset))
		}))

		for i := 0; i < 20000; i++ {
			d.SetInputs(Inputs{
				MasterResetActive: rng.Intn(500) == 0,
				Start:             rng.Intn(20) == 0,
				Stop:              rng.Intn(40) == 0,
				LocalReset:        rng.Intn(1000) == 0,
			})

			before := d.Outputs()
			edge := tick(d)

			Expect(d.Seconds()).To(BeNumerically("<=", 59))
			if edge.Signals.Overflow {
				Expect(d.Minutes()).To(Equal(before.Minutes + 1))
			} else if !edge.Signals.Clear {
				Expect(d.Minutes()).To(Equal(before.Minutes))
			}
			Expect(d.Status()).NotTo(Equal(StatusUnknown))
		}
	})
})

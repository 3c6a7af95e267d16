package cmd

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NasaHari/bitsilicon-dd-assignments/driver"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
)

var _ = Describe("Interactive panel", func() {
	var (
		d *driver.Driver
		m tea.Model
	)

	press := func(r rune) {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	tick := func(n int) {
		for i := 0; i < n; i++ {
			m, _ = m.Update(clockMsg(time.Now()))
		}
	}

	BeforeEach(func() {
		var err error

		device := stopwatch.MakeBuilder().Build("Stopwatch")
		d, err = driver.MakeBuilder().WithOutput(io.Discard).Build(device)
		Expect(err).NotTo(HaveOccurred())

		m = newPanel(d, time.Millisecond)
	})

	It("should pulse start on the next tick only", func() {
		press('s')
		Expect(d.Device().State()).To(Equal(stopwatch.Idle))

		tick(1)
		Expect(d.Device().State()).To(Equal(stopwatch.Running))
		Expect(d.Device().Inputs().Start).To(BeFalse())

		tick(3)
		Expect(d.Device().Seconds()).To(Equal(uint8(3)))
	})

	It("should pause, resume and reset", func() {
		press('s')
		tick(3)
		press('p')
		tick(4)
		Expect(d.Device().State()).To(Equal(stopwatch.Paused))
		Expect(d.Device().Seconds()).To(Equal(uint8(3)))

		press('r')
		tick(1)
		Expect(d.Device().State()).To(Equal(stopwatch.Idle))
		Expect(d.Device().Seconds()).To(BeZero())
	})

	It("should hold the master reset until toggled", func() {
		press('s')
		tick(5)

		press('m')
		Expect(d.Device().Seconds()).To(BeZero())
		Expect(m.View()).To(ContainSubstring("master reset held"))

		press('s')
		tick(2)
		Expect(d.Device().State()).To(Equal(stopwatch.Idle))

		press('m')
		press('s')
		tick(2)
		Expect(d.Device().State()).To(Equal(stopwatch.Running))
		Expect(d.Device().Seconds()).To(Equal(uint8(1)))
	})

	It("should freeze the clock", func() {
		press(' ')
		tick(3)
		Expect(d.CurrentTime()).To(BeZero())
		Expect(m.View()).To(ContainSubstring("clock frozen"))

		press(' ')
		tick(3)
		Expect(d.CurrentTime()).To(BeEquivalentTo(3))
	})

	It("should quit on q", func() {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(Equal(tea.Quit()))
	})

	It("should render the status line and cycle", func() {
		press('s')
		tick(2)

		view := m.View()
		Expect(view).To(ContainSubstring("Digital Stopwatch Controller"))
		Expect(view).To(ContainSubstring("00:01"))
		Expect(view).To(ContainSubstring("cycle 2"))
	})
})

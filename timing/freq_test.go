package timing

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		p, err := (1 * Hz).Period()

		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(time.Second))
	})

	It("should get a sub-second period", func() {
		p, err := (1 * KHz).Period()

		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(time.Millisecond))
	})

	It("should reject 0 Hz", func() {
		_, err := Freq(0).Period()

		Expect(err).To(MatchError(ErrZeroFrequency))
	})

	It("should reject negative frequencies", func() {
		_, err := Freq(-2).Period()

		Expect(errors.Is(err, ErrNegativeFrequency)).To(BeTrue())
	})

	It("should count cycles in a duration", func() {
		Expect((10 * Hz).Cycles(2 * time.Second)).To(Equal(VTimeInCycle(20)))
		Expect(Freq(0).Cycles(time.Second)).To(Equal(VTimeInCycle(0)))
	})

	It("should print with a unit", func() {
		Expect((2 * MHz).String()).To(Equal("2MHz"))
		Expect((1 * Hz).String()).To(Equal("1Hz"))
	})
})

var _ = Describe("Pacer", func() {
	It("should not block without a delay", func() {
		start := time.Now()

		WallClockPacer{}.Pace(0)
		NoPacer{}.Pace(time.Hour)

		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})

	It("should block for the requested time", func() {
		start := time.Now()

		WallClockPacer{}.Pace(5 * time.Millisecond)

		Expect(time.Since(start)).To(BeNumerically(">=", 5*time.Millisecond))
	})
})

package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NasaHari/bitsilicon-dd-assignments/driver"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
)

var _ = Describe("Monitor", func() {
	var (
		m       *Monitor
		d       *driver.Driver
		handler http.Handler
		logBuf  *bytes.Buffer
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	BeforeEach(func() {
		var err error

		device := stopwatch.MakeBuilder().Build("Stopwatch")
		d, err = driver.MakeBuilder().WithOutput(io.Discard).Build(device)
		Expect(err).NotTo(HaveOccurred())

		logBuf = new(bytes.Buffer)
		m = NewMonitor().
			WithLogger(log.New(logBuf, "", 0)).
			WithProfileDuration(10 * time.Millisecond)
		m.RegisterTarget(d)
		handler = m.Handler()
	})

	It("should replace reserved ports with a random one", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
		Expect(logBuf.String()).To(ContainSubstring("Port number 80"))
	})

	It("should report the current cycle", func() {
		d.Wait(3)

		rec := get("/api/now")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(`{"now":3}`))
	})

	It("should report the status line and last sample", func() {
		Expect(d.Pulse(driver.LineStart)).To(Succeed())
		d.Wait(4)

		rec := get("/api/status")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp statusRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Cycle).To(Equal(uint64(5)))
		Expect(rsp.Status).To(Equal("RUNNING"))
		Expect(rsp.Time).To(Equal("00:04"))
		Expect(rsp.Line).To(Equal("Status: RUNNING | Time: 00:04"))
		Expect(rsp.Paused).To(BeFalse())
		Expect(rsp.Sample).NotTo(BeNil())
		Expect(rsp.Sample.Cycle).To(Equal(uint64(5)))
		Expect(rsp.Sample.Enable).To(BeTrue())
	})

	It("should omit the sample before the first tick", func() {
		rec := get("/api/status")

		var rsp statusRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Status).To(Equal("IDLE"))
		Expect(rsp.Time).To(Equal("00:00"))
		Expect(rsp.Sample).To(BeNil())
	})

	It("should pause and continue ticking", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(d.IsPaused()).To(BeTrue())

		ticked := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			d.Tick()
			close(ticked)
		}()

		Consistently(ticked, 50*time.Millisecond).ShouldNot(BeClosed())

		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
		Eventually(ticked).Should(BeClosed())
		Expect(d.CurrentTime()).To(BeEquivalentTo(1))
		Expect(d.IsPaused()).To(BeFalse())
	})

	It("should serialize the device", func() {
		rec := get("/api/device")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
		Expect(json.Valid(rec.Body.Bytes())).To(BeTrue())
	})

	It("should list progress bars until they complete", func() {
		bar := m.CreateProgressBar("reference", 77)
		bar.IncrementFinished(10)

		var bars []progressRsp
		Expect(json.Unmarshal(get("/api/progress").Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("reference"))
		Expect(bars[0].Total).To(Equal(uint64(77)))
		Expect(bars[0].Finished).To(Equal(uint64(10)))
		Expect(bar.Done()).To(BeFalse())

		m.CompleteProgressBar(bar)

		Expect(json.Unmarshal(get("/api/progress").Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(BeEmpty())
	})

	It("should report resource usage", func() {
		rec := get("/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should collect a CPU profile", func() {
		rec := get("/api/profile")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Valid(rec.Body.Bytes())).To(BeTrue())
	})

	It("should serve the web page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should answer 503 without a target", func() {
		m = NewMonitor()
		handler = m.Handler()

		Expect(get("/api/now").Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("should refuse to start without a target", func() {
		_, err := NewMonitor().StartServer()

		Expect(err).To(MatchError(ErrNoTarget))
	})

	It("should serve over TCP", func() {
		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())
		defer func() {
			Expect(m.StopServer(context.Background())).To(Succeed())
		}()

		d.Wait(2)

		rsp, err := http.Get(url + "/api/now")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal(`{"now":2}`))
		Expect(logBuf.String()).To(ContainSubstring("Monitoring simulation with " + url))
	})
})

// Package monitoring serves a running stopwatch simulation over HTTP so that
// it can be watched, paused and profiled from outside.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/NasaHari/bitsilicon-dd-assignments/monitoring/web"
	"github.com/NasaHari/bitsilicon-dd-assignments/report"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
	"github.com/NasaHari/bitsilicon-dd-assignments/timing"
)

// ErrNoTarget is returned when starting a monitor with nothing to watch.
var ErrNoTarget = errors.New("monitoring: no target registered")

// Target is the simulation a monitor watches. The driver satisfies it.
type Target interface {
	timing.TimeTeller
	LastSample() (stopwatch.Snapshot, bool)
	Inspect(f func(*stopwatch.Device))
	Pause()
	Continue()
	IsPaused() bool
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	target          Target
	portNumber      int
	openBrowser     bool
	profileDuration time.Duration
	logger          *log.Logger

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		profileDuration: time.Second,
		logger:          log.New(os.Stderr, "", 0),
	}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// replaced by a random free port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		m.logger.Printf(
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser opens the monitoring page in a browser once the server runs.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// WithProfileDuration sets how long /api/profile samples the CPU.
func (m *Monitor) WithProfileDuration(d time.Duration) *Monitor {
	m.profileDuration = d
	return m
}

// WithLogger sets where the monitor reports its address and failures.
func (m *Monitor) WithLogger(l *log.Logger) *Monitor {
	m.logger = l
	return m
}

// RegisterTarget sets the simulation to watch.
func (m *Monitor) RegisterTarget(t Target) {
	m.target = t
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the router serving the API and the web page.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/continue", m.continueTarget)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/status", m.status)
	r.HandleFunc("/api/device", m.device)
	r.HandleFunc("/api/device/{fields}", m.deviceField)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the page URL.
func (m *Monitor) StartServer() (string, error) {
	if m.target == nil {
		return "", ErrNoTarget
	}

	listener, err := net.Listen("tcp", "localhost:"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", fmt.Errorf("monitoring: listening: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.logger.Printf("Monitoring simulation with %s", url)

	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Printf("monitoring server stopped: %v", err)
		}
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			m.logger.Printf("cannot open browser: %v", err)
		}
	}

	return url, nil
}

// StopServer shuts the server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) targetOr503(w http.ResponseWriter) Target {
	if m.target == nil {
		http.Error(w, ErrNoTarget.Error(), http.StatusServiceUnavailable)
	}

	return m.target
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		m.logger.Printf("monitoring: writing response: %v", err)
	}
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	t := m.targetOr503(w)
	if t == nil {
		return
	}

	t.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueTarget(w http.ResponseWriter, _ *http.Request) {
	t := m.targetOr503(w)
	if t == nil {
		return
	}

	t.Continue()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	t := m.targetOr503(w)
	if t == nil {
		return
	}

	fmt.Fprintf(w, "{\"now\":%d}", t.CurrentTime())
}

type statusRsp struct {
	Cycle  uint64 `json:"cycle"`
	Paused bool   `json:"paused"`
	Status string `json:"status"`
	Time   string `json:"time"`
	Line   string `json:"line"`

	Sample *stopwatch.Snapshot `json:"sample,omitempty"`
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	t := m.targetOr503(w)
	if t == nil {
		return
	}

	rsp := statusRsp{
		Cycle:  uint64(t.CurrentTime()),
		Paused: t.IsPaused(),
	}

	t.Inspect(func(d *stopwatch.Device) {
		out := d.Outputs()
		rsp.Status = report.StatusString(out.Status)
		rsp.Time = report.FormatTime(out.Minutes, out.Seconds)
		rsp.Line = report.Line(out.Status, out.Minutes, out.Seconds)
	})

	if s, ok := t.LastSample(); ok {
		rsp.Sample = &s
	}

	m.writeJSON(w, rsp)
}

func (m *Monitor) device(w http.ResponseWriter, _ *http.Request) {
	m.serializeDevice(w, nil)
}

func (m *Monitor) deviceField(w http.ResponseWriter, r *http.Request) {
	fields := strings.Split(mux.Vars(r)["fields"], ".")
	m.serializeDevice(w, fields)
}

func (m *Monitor) serializeDevice(w http.ResponseWriter, entry []string) {
	t := m.targetOr503(w)
	if t == nil {
		return
	}

	buf := new(bytes.Buffer)

	var err error

	t.Inspect(func(d *stopwatch.Device) {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(d)
		serializer.SetMaxDepth(2)

		if entry != nil {
			if err = serializer.SetEntryPoint(entry); err != nil {
				return
			}
		}

		err = serializer.Serialize(buf)
	})

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.Copy(w, buf)
}

type progressRsp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		b.Lock()
		bars = append(bars, progressRsp{
			ID:        b.ID,
			Name:      b.Name,
			StartTime: b.StartTime,
			Total:     b.Total,
			Finished:  b.Finished,
		})
		b.Unlock()
	}

	m.writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	rsp, err := currentResources()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, rsp)
}

func currentResources() (resourceRsp, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return resourceRsp{}, err
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return resourceRsp{}, err
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return resourceRsp{}, err
	}

	return resourceRsp{CPUPercent: cpuPercent, MemorySize: memInfo.RSS}, nil
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, prof)
}
